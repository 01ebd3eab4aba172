package form

import (
	"fmt"
	"time"

	"github.com/visaflow/mcp-i765-filler/internal/descriptions"
)

const profileListTimeout = 5 * time.Second

// ServerInfo returns server information, the tool inventory and usage
// guidance.
func (s *Service) ServerInfo(_ ServerInfoRequest) (*ServerInfoResult, error) {
	// List profiles with a timeout so a slow or broken profiles directory
	// cannot hang the info call.
	profiles := []string{}
	listChan := make(chan []string, 1)
	errChan := make(chan error, 1)
	go func() {
		ids, err := s.store.List()
		if err != nil {
			errChan <- err
			return
		}
		listChan <- ids
	}()
	select {
	case ids := <-listChan:
		profiles = ids
	case <-errChan:
		profiles = []string{}
	case <-time.After(profileListTimeout):
		profiles = []string{}
	}

	templateSource := s.settings.TemplatePath
	if templateSource == "" {
		templateSource = s.settings.TemplateURL
	}

	result := &ServerInfoResult{
		ServerName:         s.settings.ServerName,
		Version:            s.settings.Version,
		Mode:               s.settings.Mode,
		ProfilesDirectory:  s.store.Dir(),
		TemplatesDirectory: s.settings.TemplatesDir,
		OutputDirectory:    s.settings.OutputDir,
		TemplateSource:     templateSource,
		SchemaSource:       s.settings.SchemaSource,
		SchemaParts:        len(s.schema.Parts),
		SchemaFields:       s.schema.Len(),
		MarkToken:          s.settings.MarkToken,
		Locale:             s.translator.Locale(),
		MaxFileSize:        s.settings.MaxFileSize,
		AvailableTools:     availableTools(),
		Profiles:           profiles,
		UsageGuidance:      s.usageGuidance(),
	}
	return result, nil
}

func availableTools() []ToolInfo {
	return []ToolInfo{
		{
			Name:        "profile_create",
			Description: descriptions.GetToolDescription("profile_create"),
			Usage:       "Start here. The returned profile_id is the handle every other tool takes.",
			Parameters:  "none",
		},
		{
			Name:        "profile_import",
			Description: descriptions.GetToolDescription("profile_import"),
			Usage:       "Use this to continue working with a previously exported profile.",
			Parameters:  "data (required): the JSON produced by profile_export",
		},
		{
			Name:        "profile_export",
			Description: descriptions.GetToolDescription("profile_export"),
			Usage:       "Use this to save a profile outside the server or inspect its content.",
			Parameters:  "profile_id (required)",
		},
		{
			Name:        "profile_set_field",
			Description: descriptions.GetToolDescription("profile_set_field"),
			Usage: "Use this to enter applicant data field by field, for example " +
				"personalInfo.firstName or immigrationDetails.alienNumber. Digit segments index lists.",
			Parameters: "profile_id (required), path (required), value (required)",
		},
		{
			Name:        "profile_reset",
			Description: descriptions.GetToolDescription("profile_reset"),
			Usage:       "Use this to discard all entered data. The profile id is kept.",
			Parameters:  "profile_id (required)",
		},
		{
			Name:        "schema_info",
			Description: descriptions.GetToolDescription("schema_info"),
			Usage:       "Use this to see the form's parts and the field ids profile data maps to.",
			Parameters:  "none",
		},
		{
			Name:        "map_profile",
			Description: descriptions.GetToolDescription("map_profile"),
			Usage:       "Use this to preview exactly what would be written onto the form, before filling.",
			Parameters:  "profile_id (required)",
		},
		{
			Name:        "validate_profile",
			Description: descriptions.GetToolDescription("validate_profile"),
			Usage:       "Use this before filling. Failures are reported per form part with localized messages.",
			Parameters:  "profile_id (required)",
		},
		{
			Name:        "fill_form",
			Description: descriptions.GetToolDescription("fill_form"),
			Usage: "Produces an editable PDF by default; set flatten for a print-ready copy. " +
				"Unmatched fields are listed in the result, the fill still completes.",
			Parameters: "profile_id (required), output_name (optional), flatten (optional)",
		},
		{
			Name:        "generate_versions",
			Description: descriptions.GetToolDescription("generate_versions"),
			Usage:       "Use this when both copies are needed, for example editable for review and flattened for printing.",
			Parameters:  "profile_id (required), output_name (optional)",
		},
		{
			Name:        "form_fields",
			Description: descriptions.GetToolDescription("form_fields"),
			Usage:       "Use this to see the document's actual field names, types and current values.",
			Parameters:  "template_path (optional): defaults to the configured template",
		},
		{
			Name:        "read_form",
			Description: descriptions.GetToolDescription("read_form"),
			Usage: "Use this to recover data from a previously filled PDF. Give profile_id to write " +
				"the values back into that profile.",
			Parameters: "path (required), profile_id (optional)",
		},
		{
			Name:        "create_pdf_from_scratch",
			Description: descriptions.GetToolDescription("create_pdf_from_scratch"),
			Usage:       "Fallback when no template is available. The output is a static listing, not a fillable form.",
			Parameters:  "profile_id (required), title (optional), output_name (optional)",
		},
		{
			Name:        "template_info",
			Description: descriptions.GetToolDescription("template_info"),
			Usage:       "Use this to check pages, field inventory and metadata of the template before filling.",
			Parameters:  "template_path (optional): defaults to the configured template",
		},
		{
			Name:        "detect_device",
			Description: descriptions.GetToolDescription("detect_device"),
			Usage:       "Use this to pick the fill variant: phones get the flattened copy recommended.",
			Parameters:  "user_agent (optional), screen_width (optional)",
		},
		{
			Name:        "server_info",
			Description: descriptions.GetToolDescription("server_info"),
			Usage:       "Use this to discover directories, the loaded schema and the available tools.",
			Parameters:  "none",
		},
	}
}

func (s *Service) usageGuidance() string {
	return `I-765 Form Filler Usage Guide:

1. START WITH A PROFILE:
   - Use 'profile_create' to get a profile_id, or 'profile_import' to restore one
   - Enter data with 'profile_set_field' using dot-notation paths
     (see 'schema_info' for the data paths the form maps)

2. CHECK THE DATA:
   - Use 'validate_profile' to run the schema's validation rules
   - Use 'map_profile' to preview the exact values that will land on the form

3. FILL THE FORM:
   - Use 'fill_form' for one copy (editable by default, 'flatten' for print-ready)
   - Use 'generate_versions' for both copies in one pass
   - Use 'create_pdf_from_scratch' when no template is configured

4. WORK WITH DOCUMENTS:
   - Use 'template_info' and 'form_fields' to inspect the template
   - Use 'read_form' to recover values from a filled PDF, optionally back into a profile

IMPORTANT NOTES:
- Outputs are written under ` + s.settings.OutputDir + `
- The server can handle files up to ` + fmt.Sprintf("%d", s.settings.MaxFileSize/(1024*1024)) + `MB
- Field-level match failures never abort a fill; check failed_fields in the result
- Flattened copies are static: the interactive fields are removed permanently`
}
