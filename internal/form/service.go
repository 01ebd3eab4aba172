// Package form orchestrates the I-765 filling pipeline: profiles, the
// field schema, mapping, validation and PDF production behind one service
// with request/result typed operations.
package form

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/visaflow/mcp-i765-filler/internal/cache"
	"github.com/visaflow/mcp-i765-filler/internal/device"
	"github.com/visaflow/mcp-i765-filler/internal/form/fill"
	"github.com/visaflow/mcp-i765-filler/internal/form/mapper"
	"github.com/visaflow/mcp-i765-filler/internal/form/schema"
	"github.com/visaflow/mcp-i765-filler/internal/form/validation"
	"github.com/visaflow/mcp-i765-filler/internal/locale"
	"github.com/visaflow/mcp-i765-filler/internal/logging"
	"github.com/visaflow/mcp-i765-filler/internal/profile"
)

const (
	outputDirPerm  = 0o750
	outputFilePerm = 0o640

	defaultOutputBase = "i765"
)

// Settings carries the cross-operation configuration of a Service.
type Settings struct {
	ServerName   string
	Version      string
	Mode         string
	TemplatePath string
	TemplateURL  string
	TemplatesDir string
	OutputDir    string
	SchemaSource string
	MarkToken    string
	Locale       string
	MaxFileSize  int64
}

// Dependencies are the collaborators a Service orchestrates. Store is
// required; every other member degrades to a working default when nil.
type Dependencies struct {
	Store      *profile.Store
	Schema     *schema.Schema
	Cache      *cache.Cache
	Fetch      schema.FetchFunc
	Detector   *device.Detector
	Translator *locale.Translator
	Logger     logging.Logger
}

// Service handles form operations by orchestrating the profile store, the
// field schema, the mapper, the validator and the PDF processor.
type Service struct {
	settings   Settings
	store      *profile.Store
	schema     *schema.Schema
	mapper     *mapper.Mapper
	validator  *validation.Validator
	processor  *fill.Processor
	templates  *fill.TemplateValidator
	cache      *cache.Cache
	fetch      schema.FetchFunc
	detector   *device.Detector
	translator *locale.Translator
	guard      *PathGuard
	logger     logging.Logger
}

// NewService builds a Service from its settings and collaborators.
func NewService(settings Settings, deps Dependencies) (*Service, error) {
	if deps.Store == nil {
		return nil, fmt.Errorf("profile store is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	sch := deps.Schema
	if sch == nil {
		sch = schema.Empty()
	}
	if settings.MarkToken == "" {
		settings.MarkToken = mapper.DefaultMarkToken
	}
	tr := deps.Translator
	if tr == nil {
		var err error
		tr, err = locale.NewTranslator(settings.Locale)
		if err != nil {
			return nil, fmt.Errorf("failed to load locale dictionaries: %w", err)
		}
	}
	detector := deps.Detector
	if detector == nil {
		detector = device.NewDetector(logger)
	}

	return &Service{
		settings:   settings,
		store:      deps.Store,
		schema:     sch,
		mapper:     mapper.New(sch, settings.MarkToken, logger),
		validator:  validation.New(sch, tr, logger),
		processor:  fill.NewProcessor(settings.MarkToken, logger),
		templates:  fill.NewTemplateValidator(settings.MaxFileSize),
		cache:      deps.Cache,
		fetch:      deps.Fetch,
		detector:   detector,
		translator: tr,
		guard:      NewPathGuard(settings.TemplatesDir, settings.OutputDir),
		logger:     logger,
	}, nil
}

// Schema returns the loaded field schema.
func (s *Service) Schema() *schema.Schema {
	return s.schema
}

// MarkToken returns the checkbox mark the service writes.
func (s *Service) MarkToken() string {
	return s.settings.MarkToken
}

// ProfileCreate creates a new empty applicant profile.
func (s *Service) ProfileCreate(_ ProfileCreateRequest) (*ProfileCreateResult, error) {
	p, err := s.store.Create()
	if err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}
	return &ProfileCreateResult{
		ProfileID: p.Metadata.ID,
		Status:    string(p.Metadata.Status),
		CreatedAt: p.Metadata.CreatedAt,
	}, nil
}

// ProfileImport restores a profile from its exported JSON projection.
func (s *Service) ProfileImport(req ProfileImportRequest) (*ProfileImportResult, error) {
	if strings.TrimSpace(req.Data) == "" {
		return nil, fmt.Errorf("profile data is required")
	}
	p, err := s.store.Import([]byte(req.Data))
	if err != nil {
		return nil, fmt.Errorf("failed to import profile: %w", err)
	}
	return &ProfileImportResult{
		ProfileID: p.Metadata.ID,
		Status:    string(p.Metadata.Status),
		Version:   p.Metadata.Version,
		UpdatedAt: p.Metadata.UpdatedAt,
	}, nil
}

// ProfileExport returns a profile's JSON projection.
func (s *Service) ProfileExport(req ProfileExportRequest) (*ProfileExportResult, error) {
	if req.ProfileID == "" {
		return nil, fmt.Errorf("profile_id is required")
	}
	data, err := s.store.Export(req.ProfileID)
	if err != nil {
		return nil, fmt.Errorf("failed to export profile: %w", err)
	}
	return &ProfileExportResult{
		ProfileID: req.ProfileID,
		Data:      string(data),
		Size:      len(data),
	}, nil
}

// ProfileSetField writes one value into a profile at a dot-notation path.
func (s *Service) ProfileSetField(req ProfileSetFieldRequest) (*ProfileSetFieldResult, error) {
	if req.ProfileID == "" {
		return nil, fmt.Errorf("profile_id is required")
	}
	if strings.TrimSpace(req.Path) == "" {
		return nil, fmt.Errorf("field path is required")
	}
	p, err := s.store.SetField(req.ProfileID, req.Path, req.Value)
	if err != nil {
		return nil, fmt.Errorf("failed to set field: %w", err)
	}
	return &ProfileSetFieldResult{
		ProfileID: p.Metadata.ID,
		Path:      req.Path,
		Version:   p.Metadata.Version,
		UpdatedAt: p.Metadata.UpdatedAt,
	}, nil
}

// ProfileReset replaces a profile's content with a fresh empty instance.
func (s *Service) ProfileReset(req ProfileResetRequest) (*ProfileResetResult, error) {
	if req.ProfileID == "" {
		return nil, fmt.Errorf("profile_id is required")
	}
	p, err := s.store.Reset(req.ProfileID)
	if err != nil {
		return nil, fmt.Errorf("failed to reset profile: %w", err)
	}
	return &ProfileResetResult{
		ProfileID: p.Metadata.ID,
		Status:    string(p.Metadata.Status),
	}, nil
}

// SchemaInfo describes the loaded field schema, including the authoring
// problems the loader tolerates: duplicate ids and ambiguous value
// mappings.
func (s *Service) SchemaInfo(_ SchemaInfoRequest) (*SchemaInfoResult, error) {
	result := &SchemaInfoResult{
		Source:            s.settings.SchemaSource,
		PartCount:         len(s.schema.Parts),
		FieldCount:        s.schema.Len(),
		Parts:             make([]SchemaPart, 0, len(s.schema.Parts)),
		DuplicateFieldIDs: s.schema.DuplicateFieldIDs(),
		AmbiguousMappings: s.schema.AmbiguousMappings(),
	}
	for _, part := range s.schema.Parts {
		sp := SchemaPart{
			Name:       part.Name,
			FieldCount: len(part.Fields),
			FieldIDs:   make([]string, 0, len(part.Fields)),
		}
		for _, f := range part.Fields {
			sp.FieldIDs = append(sp.FieldIDs, f.FieldID)
		}
		result.Parts = append(result.Parts, sp)
	}
	return result, nil
}

// MapProfile resolves a profile into the flat form values the fill
// pipeline consumes.
func (s *Service) MapProfile(req MapProfileRequest) (*MapProfileResult, error) {
	fields, err := s.resolveProfile(req.ProfileID)
	if err != nil {
		return nil, err
	}
	return &MapProfileResult{
		ProfileID:  req.ProfileID,
		FieldCount: len(fields),
		Fields:     fields,
	}, nil
}

// ValidateProfile checks a profile against the schema's validation rules.
func (s *Service) ValidateProfile(req ValidateProfileRequest) (*ValidateProfileResult, error) {
	if req.ProfileID == "" {
		return nil, fmt.Errorf("profile_id is required")
	}
	p, err := s.store.Load(req.ProfileID)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	res, err := s.validator.ValidateProfile(p)
	if err != nil {
		return nil, fmt.Errorf("failed to validate profile: %w", err)
	}
	return &ValidateProfileResult{
		ProfileID:     req.ProfileID,
		Valid:         res.Valid,
		CheckedFields: res.Checked,
		FailedFields:  res.Failed,
		Parts:         res.Parts,
	}, nil
}

// DetectDevice classifies the requesting client and recommends the fill
// variant that suits it.
func (s *Service) DetectDevice(req DetectDeviceRequest) (*DetectDeviceResult, error) {
	kind := s.detector.Classify(req.UserAgent, req.ScreenWidth)
	variant := kind.RecommendedVariant()
	return &DetectDeviceResult{
		Device:             string(kind),
		Label:              s.translator.T(kind.LocaleKey()),
		RecommendedVariant: string(variant),
		Guidance:           s.translator.T("form." + string(variant) + "_copy"),
	}, nil
}

// resolveProfile loads a profile and maps it to ordered form values.
func (s *Service) resolveProfile(profileID string) ([]mapper.ResolvedField, error) {
	if profileID == "" {
		return nil, fmt.Errorf("profile_id is required")
	}
	p, err := s.store.Load(profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	resolved, err := s.mapper.MapProfileToForm(p)
	if err != nil {
		return nil, fmt.Errorf("failed to map profile: %w", err)
	}
	return s.mapper.Ordered(resolved), nil
}

// templateBytes acquires the form template: an explicit override path, the
// configured path, or the configured URL through the cache, in that order.
func (s *Service) templateBytes(ctx context.Context, override string) ([]byte, string, error) {
	if override != "" {
		if err := s.guard.Validate(override); err != nil {
			return nil, "", fmt.Errorf("security validation failed: %w", err)
		}
		data, err := s.readTemplateFile(override)
		if err != nil {
			return nil, "", err
		}
		return data, override, nil
	}
	if s.settings.TemplatePath != "" {
		data, err := s.readTemplateFile(s.settings.TemplatePath)
		if err != nil {
			return nil, "", err
		}
		return data, s.settings.TemplatePath, nil
	}
	if s.settings.TemplateURL != "" {
		data, err := s.fetchTemplate(ctx, s.settings.TemplateURL)
		if err != nil {
			return nil, "", fmt.Errorf("failed to fetch template: %w", err)
		}
		if err := s.templates.ValidateBytes(data); err != nil {
			return nil, "", err
		}
		return data, s.settings.TemplateURL, nil
	}
	return nil, "", fill.NewError(fill.ErrorKindTemplateMissing, "no form template configured")
}

func (s *Service) readTemplateFile(path string) ([]byte, error) {
	if err := s.templates.ValidateFile(path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read template %s: %w", path, err)
	}
	return data, nil
}

func (s *Service) fetchTemplate(ctx context.Context, url string) ([]byte, error) {
	if s.fetch == nil {
		return nil, fmt.Errorf("no fetcher configured for template URL %s", url)
	}
	fetch := func(ctx context.Context) ([]byte, error) {
		return s.fetch(ctx, url)
	}
	if s.cache != nil {
		return s.cache.Get(ctx, "template:"+url, fetch)
	}
	return fetch(ctx)
}

// writeOutput stores one produced document under the output directory and
// returns its full path.
func (s *Service) writeOutput(name, variant string, data []byte) (string, error) {
	if s.settings.OutputDir == "" {
		return "", fmt.Errorf("no output directory configured")
	}
	if err := os.MkdirAll(s.settings.OutputDir, outputDirPerm); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	full := filepath.Join(s.settings.OutputDir, outputFileName(name, variant))
	if err := os.WriteFile(full, data, outputFilePerm); err != nil {
		return "", fmt.Errorf("failed to write output: %w", err)
	}
	return full, nil
}

// outputFileName reduces a caller-supplied name to a safe base name,
// appends the variant suffix and forces a .pdf extension.
func outputFileName(name, variant string) string {
	base := strings.TrimSpace(name)
	if base != "" {
		base = filepath.Base(base)
		base = strings.TrimSuffix(base, filepath.Ext(base))
	}
	if base == "" || base == "." || base == string(filepath.Separator) {
		base = defaultOutputBase
	}
	if variant != "" {
		base += "_" + variant
	}
	return base + ".pdf"
}

// shortID returns the leading segment of a profile id for default file
// names.
func shortID(id string) string {
	if i := strings.IndexByte(id, '-'); i > 0 {
		return id[:i]
	}
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
