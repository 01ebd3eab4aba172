package form

import (
	"context"
	"fmt"
	"os"

	"github.com/visaflow/mcp-i765-filler/internal/form/fill"
)

// Output variant suffixes.
const (
	variantEditable  = "editable"
	variantFlattened = "flattened"
	variantWorksheet = "worksheet"
)

// FillForm maps a profile onto the form template and writes the produced
// document under the output directory. Field-level match failures are
// reported in the result, not as an error.
func (s *Service) FillForm(ctx context.Context, req FillFormRequest) (*FillFormResult, error) {
	fields, err := s.resolveProfile(req.ProfileID)
	if err != nil {
		return nil, err
	}
	template, _, err := s.templateBytes(ctx, "")
	if err != nil {
		return nil, err
	}

	res, err := s.processor.FillForm(template, fields, fill.FillOptions{Flatten: req.Flatten})
	if err != nil {
		return nil, fmt.Errorf("failed to fill form: %w", err)
	}

	variant := variantEditable
	if req.Flatten {
		variant = variantFlattened
	}
	path, err := s.writeOutput(s.outputBase(req.OutputName, req.ProfileID), variant, res.Output)
	if err != nil {
		return nil, err
	}

	s.logger.Info("form output written", map[string]interface{}{
		"profile_id": req.ProfileID,
		"path":       path,
		"flattened":  res.Flattened,
		"filled":     len(res.FilledFields),
		"failed":     len(res.FailedFields),
	})
	return &FillFormResult{
		ProfileID:    req.ProfileID,
		OutputPath:   path,
		Flattened:    res.Flattened,
		SizeBytes:    int64(len(res.Output)),
		FieldCount:   res.FieldCount,
		FilledCount:  len(res.FilledFields),
		FilledFields: res.FilledFields,
		FailedFields: res.FailedFields,
	}, nil
}

// GenerateVersions produces the editable and the flattened fill in one
// pass and writes both under the output directory.
func (s *Service) GenerateVersions(ctx context.Context, req GenerateVersionsRequest) (*GenerateVersionsResult, error) {
	fields, err := s.resolveProfile(req.ProfileID)
	if err != nil {
		return nil, err
	}
	template, _, err := s.templateBytes(ctx, "")
	if err != nil {
		return nil, err
	}

	editable, flattened, err := s.processor.GenerateBothVersions(template, fields)
	if err != nil {
		return nil, fmt.Errorf("failed to generate versions: %w", err)
	}

	base := s.outputBase(req.OutputName, req.ProfileID)
	editablePath, err := s.writeOutput(base, variantEditable, editable.Output)
	if err != nil {
		return nil, err
	}
	flattenedPath, err := s.writeOutput(base, variantFlattened, flattened.Output)
	if err != nil {
		return nil, err
	}

	s.logger.Info("both versions written", map[string]interface{}{
		"profile_id": req.ProfileID,
		"editable":   editablePath,
		"flattened":  flattenedPath,
	})
	return &GenerateVersionsResult{
		ProfileID:     req.ProfileID,
		EditablePath:  editablePath,
		FlattenedPath: flattenedPath,
		EditableSize:  int64(len(editable.Output)),
		FlattenedSize: int64(len(flattened.Output)),
		FilledCount:   len(editable.FilledFields),
		FailedFields:  editable.FailedFields,
	}, nil
}

// FormFields enumerates the interactive fields of the form template, or of
// an explicitly named document.
func (s *Service) FormFields(ctx context.Context, req FormFieldsRequest) (*FormFieldsResult, error) {
	template, source, err := s.templateBytes(ctx, req.TemplatePath)
	if err != nil {
		return nil, err
	}
	fields, err := s.processor.FormFieldNames(template)
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate fields: %w", err)
	}
	return &FormFieldsResult{
		Template:   source,
		FieldCount: len(fields),
		Fields:     fields,
	}, nil
}

// ReadForm reads the values out of a filled form and, when a profile id is
// given, writes them back into that profile.
func (s *Service) ReadForm(req ReadFormRequest) (*ReadFormResult, error) {
	if req.Path == "" {
		return nil, fmt.Errorf("path is required")
	}
	if err := s.guard.Validate(req.Path); err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}
	if err := s.templates.ValidateFile(req.Path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(req.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", req.Path, err)
	}

	values, err := s.processor.ReadFormData(data, s.schema)
	if err != nil {
		return nil, fmt.Errorf("failed to read form values: %w", err)
	}

	result := &ReadFormResult{
		Path:       req.Path,
		FieldCount: len(values),
		Values:     values,
		ProfileID:  req.ProfileID,
	}
	if req.ProfileID == "" {
		return result, nil
	}

	p, err := s.store.Load(req.ProfileID)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	if err := s.mapper.MapFormToProfile(values, p); err != nil {
		return nil, fmt.Errorf("failed to apply form values: %w", err)
	}
	if err := s.store.Save(p); err != nil {
		return nil, fmt.Errorf("failed to save profile: %w", err)
	}
	result.ProfileUpdated = true

	s.logger.Info("form values applied to profile", map[string]interface{}{
		"profile_id": req.ProfileID,
		"values":     len(values),
	})
	return result, nil
}

// CreateFromScratch produces the no-template fallback document listing a
// profile's form data.
func (s *Service) CreateFromScratch(req CreateScratchRequest) (*CreateScratchResult, error) {
	fields, err := s.resolveProfile(req.ProfileID)
	if err != nil {
		return nil, err
	}

	title := req.Title
	if title == "" {
		title = s.translator.T("form.scratch_title")
	}
	data, err := s.processor.CreateFromScratch(title, fields)
	if err != nil {
		return nil, fmt.Errorf("failed to create document: %w", err)
	}

	path, err := s.writeOutput(s.outputBase(req.OutputName, req.ProfileID), variantWorksheet, data)
	if err != nil {
		return nil, err
	}
	return &CreateScratchResult{
		ProfileID:  req.ProfileID,
		OutputPath: path,
		SizeBytes:  int64(len(data)),
		FieldCount: len(fields),
	}, nil
}

// TemplateInfo inspects the form template, or an explicitly named
// document.
func (s *Service) TemplateInfo(ctx context.Context, req TemplateInfoRequest) (*TemplateInfoResult, error) {
	template, source, err := s.templateBytes(ctx, req.TemplatePath)
	if err != nil {
		return nil, err
	}
	details, err := s.processor.TemplateInfo(template)
	if err != nil {
		return nil, fmt.Errorf("failed to inspect template: %w", err)
	}
	return &TemplateInfoResult{
		Template:    source,
		PageCount:   details.PageCount,
		FieldCount:  details.FieldCount,
		FieldTypes:  details.FieldTypes,
		Title:       details.Title,
		Producer:    details.Producer,
		SizeBytes:   details.SizeBytes,
		TextPreview: details.TextPreview,
	}, nil
}

// outputBase picks the base file name for produced documents: the caller's
// name when given, otherwise a profile-derived default.
func (s *Service) outputBase(name, profileID string) string {
	if name != "" {
		return name
	}
	return defaultOutputBase + "_" + shortID(profileID)
}
