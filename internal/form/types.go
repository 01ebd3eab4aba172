package form

import (
	"github.com/visaflow/mcp-i765-filler/internal/form/fill"
	"github.com/visaflow/mcp-i765-filler/internal/form/mapper"
	"github.com/visaflow/mcp-i765-filler/internal/form/validation"
)

// ToolInfo describes one available tool in server info output.
type ToolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Usage       string `json:"usage"`
	Parameters  string `json:"parameters"`
}

// SchemaPart summarizes one section of the loaded field schema.
type SchemaPart struct {
	Name       string   `json:"name,omitempty"`
	FieldCount int      `json:"field_count"`
	FieldIDs   []string `json:"field_ids"`
}

// Request Types

// ProfileCreateRequest represents a request to create a new empty profile.
type ProfileCreateRequest struct {
	// No parameters; the id is generated.
}

// ProfileImportRequest represents a request to restore a profile from its
// exported JSON projection.
type ProfileImportRequest struct {
	Data string `json:"data"`
}

// ProfileExportRequest represents a request to export a profile as JSON.
type ProfileExportRequest struct {
	ProfileID string `json:"profile_id"`
}

// ProfileSetFieldRequest represents a request to write one value into a
// profile at a dot-notation path.
type ProfileSetFieldRequest struct {
	ProfileID string      `json:"profile_id"`
	Path      string      `json:"path"`
	Value     interface{} `json:"value"`
}

// ProfileResetRequest represents a request to reset a profile to a fresh
// empty instance while keeping its id.
type ProfileResetRequest struct {
	ProfileID string `json:"profile_id"`
}

// SchemaInfoRequest represents a request to describe the loaded field schema.
type SchemaInfoRequest struct {
	// No parameters needed for schema info
}

// MapProfileRequest represents a request to resolve a profile into form
// field values.
type MapProfileRequest struct {
	ProfileID string `json:"profile_id"`
}

// ValidateProfileRequest represents a request to validate a profile against
// the schema's rules.
type ValidateProfileRequest struct {
	ProfileID string `json:"profile_id"`
}

// FillFormRequest represents a request to fill the form template with a
// profile's data.
type FillFormRequest struct {
	ProfileID  string `json:"profile_id"`
	OutputName string `json:"output_name,omitempty"`
	Flatten    bool   `json:"flatten,omitempty"`
}

// GenerateVersionsRequest represents a request to produce both the editable
// and the flattened fill of the form in one pass.
type GenerateVersionsRequest struct {
	ProfileID  string `json:"profile_id"`
	OutputName string `json:"output_name,omitempty"`
}

// FormFieldsRequest represents a request to enumerate the interactive
// fields of the form template.
type FormFieldsRequest struct {
	TemplatePath string `json:"template_path,omitempty"`
}

// ReadFormRequest represents a request to read the values out of a filled
// form, optionally writing them back into a profile.
type ReadFormRequest struct {
	Path      string `json:"path"`
	ProfileID string `json:"profile_id,omitempty"`
}

// CreateScratchRequest represents a request to produce the no-template
// fallback document listing a profile's form data.
type CreateScratchRequest struct {
	ProfileID  string `json:"profile_id"`
	Title      string `json:"title,omitempty"`
	OutputName string `json:"output_name,omitempty"`
}

// TemplateInfoRequest represents a request to inspect the form template.
type TemplateInfoRequest struct {
	TemplatePath string `json:"template_path,omitempty"`
}

// DetectDeviceRequest represents a request to classify the requesting
// client device.
type DetectDeviceRequest struct {
	UserAgent   string `json:"user_agent,omitempty"`
	ScreenWidth int    `json:"screen_width,omitempty"`
}

// ServerInfoRequest represents a request to get server information and
// capabilities.
type ServerInfoRequest struct {
	// No parameters needed for server info
}

// Response Types

// ProfileCreateResult represents the outcome of creating a profile.
type ProfileCreateResult struct {
	ProfileID string `json:"profile_id"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}

// ProfileImportResult represents the outcome of importing a profile.
type ProfileImportResult struct {
	ProfileID string `json:"profile_id"`
	Status    string `json:"status"`
	Version   int    `json:"version"`
	UpdatedAt string `json:"updated_at"`
}

// ProfileExportResult represents the outcome of exporting a profile.
type ProfileExportResult struct {
	ProfileID string `json:"profile_id"`
	Data      string `json:"data"`
	Size      int    `json:"size"`
}

// ProfileSetFieldResult represents the outcome of a single field write.
type ProfileSetFieldResult struct {
	ProfileID string `json:"profile_id"`
	Path      string `json:"path"`
	Version   int    `json:"version"`
	UpdatedAt string `json:"updated_at"`
}

// ProfileResetResult represents the outcome of resetting a profile.
type ProfileResetResult struct {
	ProfileID string `json:"profile_id"`
	Status    string `json:"status"`
}

// SchemaInfoResult describes the loaded field schema.
type SchemaInfoResult struct {
	Source            string              `json:"source,omitempty"`
	PartCount         int                 `json:"part_count"`
	FieldCount        int                 `json:"field_count"`
	Parts             []SchemaPart        `json:"parts"`
	DuplicateFieldIDs []string            `json:"duplicate_field_ids,omitempty"`
	AmbiguousMappings map[string][]string `json:"ambiguous_mappings,omitempty"`
}

// MapProfileResult holds the resolved form values for one profile.
type MapProfileResult struct {
	ProfileID  string                 `json:"profile_id"`
	FieldCount int                    `json:"field_count"`
	Fields     []mapper.ResolvedField `json:"fields"`
}

// ValidateProfileResult holds the outcome of one validation pass.
type ValidateProfileResult struct {
	ProfileID     string                  `json:"profile_id"`
	Valid         bool                    `json:"valid"`
	CheckedFields int                     `json:"checked_fields"`
	FailedFields  int                     `json:"failed_fields"`
	Parts         []validation.PartResult `json:"parts"`
}

// FillFormResult represents the outcome of filling the form template.
type FillFormResult struct {
	ProfileID    string             `json:"profile_id"`
	OutputPath   string             `json:"output_path"`
	Flattened    bool               `json:"flattened"`
	SizeBytes    int64              `json:"size_bytes"`
	FieldCount   int                `json:"field_count"`
	FilledCount  int                `json:"filled_count"`
	FilledFields []string           `json:"filled_fields"`
	FailedFields []fill.FailedField `json:"failed_fields,omitempty"`
}

// GenerateVersionsResult represents the outcome of producing both fill
// variants.
type GenerateVersionsResult struct {
	ProfileID     string             `json:"profile_id"`
	EditablePath  string             `json:"editable_path"`
	FlattenedPath string             `json:"flattened_path"`
	EditableSize  int64              `json:"editable_size"`
	FlattenedSize int64              `json:"flattened_size"`
	FilledCount   int                `json:"filled_count"`
	FailedFields  []fill.FailedField `json:"failed_fields,omitempty"`
}

// FormFieldsResult lists the interactive fields found in a template.
type FormFieldsResult struct {
	Template   string       `json:"template"`
	FieldCount int          `json:"field_count"`
	Fields     []fill.Field `json:"fields"`
}

// ReadFormResult holds the values read out of a filled form, keyed by
// schema field id.
type ReadFormResult struct {
	Path           string            `json:"path"`
	FieldCount     int               `json:"field_count"`
	Values         map[string]string `json:"values"`
	ProfileID      string            `json:"profile_id,omitempty"`
	ProfileUpdated bool              `json:"profile_updated"`
}

// CreateScratchResult represents the outcome of the no-template fallback.
type CreateScratchResult struct {
	ProfileID  string `json:"profile_id"`
	OutputPath string `json:"output_path"`
	SizeBytes  int64  `json:"size_bytes"`
	FieldCount int    `json:"field_count"`
}

// TemplateInfoResult describes the form template document.
type TemplateInfoResult struct {
	Template    string         `json:"template"`
	PageCount   int            `json:"page_count"`
	FieldCount  int            `json:"field_count"`
	FieldTypes  map[string]int `json:"field_types,omitempty"`
	Title       string         `json:"title,omitempty"`
	Producer    string         `json:"producer,omitempty"`
	SizeBytes   int64          `json:"size_bytes"`
	TextPreview string         `json:"text_preview,omitempty"`
}

// DetectDeviceResult represents the outcome of device classification.
type DetectDeviceResult struct {
	Device             string `json:"device"`
	Label              string `json:"label"`
	RecommendedVariant string `json:"recommended_variant"`
	Guidance           string `json:"guidance,omitempty"`
}

// ServerInfoResult represents server information and usage guidance.
type ServerInfoResult struct {
	ServerName         string     `json:"server_name"`
	Version            string     `json:"version"`
	Mode               string     `json:"mode"`
	ProfilesDirectory  string     `json:"profiles_directory"`
	TemplatesDirectory string     `json:"templates_directory,omitempty"`
	OutputDirectory    string     `json:"output_directory"`
	TemplateSource     string     `json:"template_source,omitempty"`
	SchemaSource       string     `json:"schema_source,omitempty"`
	SchemaParts        int        `json:"schema_parts"`
	SchemaFields       int        `json:"schema_fields"`
	MarkToken          string     `json:"mark_token"`
	Locale             string     `json:"locale"`
	MaxFileSize        int64      `json:"max_file_size"`
	AvailableTools     []ToolInfo `json:"available_tools"`
	Profiles           []string   `json:"profiles"`
	UsageGuidance      string     `json:"usage_guidance"`
}
