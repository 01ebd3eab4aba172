package mcp

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/visaflow/mcp-i765-filler/internal/config"
	"github.com/visaflow/mcp-i765-filler/internal/form"
	"github.com/visaflow/mcp-i765-filler/internal/logging"
)

const shutdownTimeout = 5 * time.Second

// Server represents the MCP server instance
type Server struct {
	config      *config.Config
	formService *form.Service
	mcpServer   *server.MCPServer
	logger      logging.Logger
}

// NewServer creates a new MCP server instance
func NewServer(cfg *config.Config, formService *form.Service, logger logging.Logger) (*Server, error) {
	if formService == nil {
		return nil, fmt.Errorf("formService cannot be nil")
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	// Create MCP server
	mcpServer := server.NewMCPServer(
		cfg.ServerName,
		cfg.Version,
		server.WithToolCapabilities(false), // We don't support dynamic tool capabilities
	)

	s := &Server{
		config:      cfg,
		formService: formService,
		mcpServer:   mcpServer,
		logger:      logger,
	}

	// Register tools
	s.registerTools()

	return s, nil
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	// Register profile create tool
	profileCreateTool := mcp.NewTool(
		"profile_create",
		mcp.WithDescription("Create a new empty applicant profile"),
	)
	s.mcpServer.AddTool(profileCreateTool, s.handleProfileCreate)

	// Register profile import tool
	profileImportTool := mcp.NewTool(
		"profile_import",
		mcp.WithDescription("Restore an applicant profile from exported JSON"),
		mcp.WithString("data",
			mcp.Required(),
			mcp.Description("Profile JSON produced by profile_export"),
		),
	)
	s.mcpServer.AddTool(profileImportTool, s.handleProfileImport)

	// Register profile export tool
	profileExportTool := mcp.NewTool(
		"profile_export",
		mcp.WithDescription("Export an applicant profile as JSON"),
		mcp.WithString("profile_id",
			mcp.Required(),
			mcp.Description("Identifier of the profile to export"),
		),
	)
	s.mcpServer.AddTool(profileExportTool, s.handleProfileExport)

	// Register profile set field tool
	profileSetFieldTool := mcp.NewTool(
		"profile_set_field",
		mcp.WithDescription("Write one value into a profile at a dot-notation path"),
		mcp.WithString("profile_id",
			mcp.Required(),
			mcp.Description("Identifier of the profile to update"),
		),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Dot-notation path, for example personalInfo.familyName"),
		),
		mcp.WithString("value",
			mcp.Required(),
			mcp.Description("Value to write; strings, numbers and booleans are all accepted"),
		),
	)
	s.mcpServer.AddTool(profileSetFieldTool, s.handleProfileSetField)

	// Register profile reset tool
	profileResetTool := mcp.NewTool(
		"profile_reset",
		mcp.WithDescription("Reset a profile to a fresh empty instance"),
		mcp.WithString("profile_id",
			mcp.Required(),
			mcp.Description("Identifier of the profile to reset"),
		),
	)
	s.mcpServer.AddTool(profileResetTool, s.handleProfileReset)

	// Register schema info tool
	schemaInfoTool := mcp.NewTool(
		"schema_info",
		mcp.WithDescription("Describe the loaded field schema"),
	)
	s.mcpServer.AddTool(schemaInfoTool, s.handleSchemaInfo)

	// Register map profile tool
	mapProfileTool := mcp.NewTool(
		"map_profile",
		mcp.WithDescription("Resolve a profile into the form's field values"),
		mcp.WithString("profile_id",
			mcp.Required(),
			mcp.Description("Identifier of the profile to map"),
		),
	)
	s.mcpServer.AddTool(mapProfileTool, s.handleMapProfile)

	// Register validate profile tool
	validateProfileTool := mcp.NewTool(
		"validate_profile",
		mcp.WithDescription("Check a profile against the schema's validation rules"),
		mcp.WithString("profile_id",
			mcp.Required(),
			mcp.Description("Identifier of the profile to validate"),
		),
	)
	s.mcpServer.AddTool(validateProfileTool, s.handleValidateProfile)

	// Register fill form tool
	fillFormTool := mcp.NewTool(
		"fill_form",
		mcp.WithDescription("Fill the I-765 template with a profile's data"),
		mcp.WithString("profile_id",
			mcp.Required(),
			mcp.Description("Identifier of the profile whose data fills the form"),
		),
		mcp.WithString("output_name",
			mcp.Description("Base name for the output file (derived from the profile id if empty)"),
		),
		mcp.WithBoolean("flatten",
			mcp.Description("Produce the print-ready copy instead of the editable one"),
		),
	)
	s.mcpServer.AddTool(fillFormTool, s.handleFillForm)

	// Register generate versions tool
	generateVersionsTool := mcp.NewTool(
		"generate_versions",
		mcp.WithDescription("Produce the editable and the flattened fill in one pass"),
		mcp.WithString("profile_id",
			mcp.Required(),
			mcp.Description("Identifier of the profile whose data fills the form"),
		),
		mcp.WithString("output_name",
			mcp.Description("Base name for the output files (derived from the profile id if empty)"),
		),
	)
	s.mcpServer.AddTool(generateVersionsTool, s.handleGenerateVersions)

	// Register form fields tool
	formFieldsTool := mcp.NewTool(
		"form_fields",
		mcp.WithDescription("Enumerate the interactive fields of the form template"),
		mcp.WithString("template_path",
			mcp.Description("Path to a template PDF (uses the configured template if empty)"),
		),
	)
	s.mcpServer.AddTool(formFieldsTool, s.handleFormFields)

	// Register read form tool
	readFormTool := mcp.NewTool(
		"read_form",
		mcp.WithDescription("Read the values out of a filled form"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Full path to the filled PDF"),
		),
		mcp.WithString("profile_id",
			mcp.Description("Profile to update with the values read back"),
		),
	)
	s.mcpServer.AddTool(readFormTool, s.handleReadForm)

	// Register create pdf from scratch tool
	createScratchTool := mcp.NewTool(
		"create_pdf_from_scratch",
		mcp.WithDescription("Produce a plain worksheet listing a profile's form data"),
		mcp.WithString("profile_id",
			mcp.Required(),
			mcp.Description("Identifier of the profile to list"),
		),
		mcp.WithString("title",
			mcp.Description("Document title (uses the localized default if empty)"),
		),
		mcp.WithString("output_name",
			mcp.Description("Base name for the output file (derived from the profile id if empty)"),
		),
	)
	s.mcpServer.AddTool(createScratchTool, s.handleCreateScratch)

	// Register template info tool
	templateInfoTool := mcp.NewTool(
		"template_info",
		mcp.WithDescription("Inspect the form template document"),
		mcp.WithString("template_path",
			mcp.Description("Path to a template PDF (uses the configured template if empty)"),
		),
	)
	s.mcpServer.AddTool(templateInfoTool, s.handleTemplateInfo)

	// Register detect device tool
	detectDeviceTool := mcp.NewTool(
		"detect_device",
		mcp.WithDescription("Classify the requesting client device"),
		mcp.WithString("user_agent",
			mcp.Description("User agent string of the requesting client"),
		),
		mcp.WithNumber("screen_width",
			mcp.Description("Screen width of the requesting client in pixels"),
		),
	)
	s.mcpServer.AddTool(detectDeviceTool, s.handleDetectDevice)

	// Register server info tool
	serverInfoTool := mcp.NewTool(
		"server_info",
		mcp.WithDescription("Get server information and usage guidance"),
	)
	s.mcpServer.AddTool(serverInfoTool, s.handleServerInfo)
}

// Handler functions
func (s *Server) handleProfileCreate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := s.formService.ProfileCreate(form.ProfileCreateRequest{})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	responseText := fmt.Sprintf("Created profile %s\n", result.ProfileID)
	responseText += fmt.Sprintf("Status: %s\n", result.Status)
	responseText += fmt.Sprintf("Created: %s\n", result.CreatedAt)
	responseText += "\nUse profile_set_field to start filling it in."

	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handleProfileImport(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	data, err := request.RequireString("data")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	req := form.ProfileImportRequest{Data: data}
	result, err := s.formService.ProfileImport(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	responseText := fmt.Sprintf("Imported profile %s\n", result.ProfileID)
	responseText += fmt.Sprintf("Version: %d\n", result.Version)
	responseText += fmt.Sprintf("Updated: %s\n", result.UpdatedAt)

	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handleProfileExport(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	profileID, err := request.RequireString("profile_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	req := form.ProfileExportRequest{ProfileID: profileID}
	result, err := s.formService.ProfileExport(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	responseText := fmt.Sprintf("Exported profile %s (%d bytes)\n\n", result.ProfileID, result.Size)
	responseText += result.Data

	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handleProfileSetField(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	profileID, err := request.RequireString("profile_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	// The value keeps whatever JSON type the client sent.
	args := request.GetArguments()
	value, ok := args["value"]
	if !ok {
		return mcp.NewToolResultError("required argument \"value\" not found"), nil
	}

	req := form.ProfileSetFieldRequest{
		ProfileID: profileID,
		Path:      path,
		Value:     value,
	}
	result, err := s.formService.ProfileSetField(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	responseText := fmt.Sprintf("Set %s on profile %s\n", result.Path, result.ProfileID)
	responseText += fmt.Sprintf("Version: %d\n", result.Version)
	responseText += fmt.Sprintf("Updated: %s\n", result.UpdatedAt)

	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handleProfileReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	profileID, err := request.RequireString("profile_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	req := form.ProfileResetRequest{ProfileID: profileID}
	result, err := s.formService.ProfileReset(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	responseText := fmt.Sprintf("Reset profile %s\n", result.ProfileID)
	responseText += fmt.Sprintf("Status: %s\n", result.Status)

	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handleSchemaInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := s.formService.SchemaInfo(form.SchemaInfoRequest{})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	responseText := s.formatSchemaInfoResult(result)
	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handleMapProfile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	profileID, err := request.RequireString("profile_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	req := form.MapProfileRequest{ProfileID: profileID}
	result, err := s.formService.MapProfile(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var responseText string
	if result.FieldCount == 0 {
		responseText = fmt.Sprintf("Profile %s has no values that map to form fields yet", result.ProfileID)
	} else {
		responseText = s.formatMapProfileResult(result)
	}

	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handleValidateProfile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	profileID, err := request.RequireString("profile_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	req := form.ValidateProfileRequest{ProfileID: profileID}
	result, err := s.formService.ValidateProfile(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	responseText := s.formatValidateProfileResult(result)
	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handleFillForm(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	profileID, err := request.RequireString("profile_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	args := request.GetArguments()
	req := form.FillFormRequest{ProfileID: profileID}
	if name, ok := args["output_name"].(string); ok {
		req.OutputName = name
	}
	if flatten, ok := args["flatten"].(bool); ok {
		req.Flatten = flatten
	}

	result, err := s.formService.FillForm(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	responseText := s.formatFillFormResult(result)
	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handleGenerateVersions(ctx context.Context, request mcp.CallToolRequest) (
	*mcp.CallToolResult, error,
) {
	profileID, err := request.RequireString("profile_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	args := request.GetArguments()
	req := form.GenerateVersionsRequest{ProfileID: profileID}
	if name, ok := args["output_name"].(string); ok {
		req.OutputName = name
	}

	result, err := s.formService.GenerateVersions(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	responseText := s.formatGenerateVersionsResult(result)
	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handleFormFields(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	req := form.FormFieldsRequest{}
	if path, ok := args["template_path"].(string); ok && path != "" {
		req.TemplatePath = path
	}

	result, err := s.formService.FormFields(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	responseText := s.formatFormFieldsResult(result)
	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handleReadForm(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	args := request.GetArguments()
	req := form.ReadFormRequest{Path: path}
	if profileID, ok := args["profile_id"].(string); ok {
		req.ProfileID = profileID
	}

	result, err := s.formService.ReadForm(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	responseText := s.formatReadFormResult(result)
	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handleCreateScratch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	profileID, err := request.RequireString("profile_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	args := request.GetArguments()
	req := form.CreateScratchRequest{ProfileID: profileID}
	if title, ok := args["title"].(string); ok {
		req.Title = title
	}
	if name, ok := args["output_name"].(string); ok {
		req.OutputName = name
	}

	result, err := s.formService.CreateFromScratch(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	responseText := fmt.Sprintf("Created worksheet for profile %s\n", result.ProfileID)
	responseText += fmt.Sprintf("Output: %s\n", result.OutputPath)
	responseText += fmt.Sprintf("Size: %d bytes\n", result.SizeBytes)
	responseText += fmt.Sprintf("Fields listed: %d\n", result.FieldCount)
	responseText += "\nThe worksheet is not the official form. Use it to review values when no template is available."

	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handleTemplateInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	req := form.TemplateInfoRequest{}
	if path, ok := args["template_path"].(string); ok && path != "" {
		req.TemplatePath = path
	}

	result, err := s.formService.TemplateInfo(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	responseText := s.formatTemplateInfoResult(result)
	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handleDetectDevice(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	req := form.DetectDeviceRequest{}
	if ua, ok := args["user_agent"].(string); ok {
		req.UserAgent = ua
	}
	if width, ok := args["screen_width"].(float64); ok {
		req.ScreenWidth = int(width)
	}

	result, err := s.formService.DetectDevice(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	responseText := fmt.Sprintf("Device: %s (%s)\n", result.Label, result.Device)
	responseText += fmt.Sprintf("Recommended variant: %s\n", result.RecommendedVariant)
	if result.Guidance != "" {
		responseText += fmt.Sprintf("Guidance: %s\n", result.Guidance)
	}

	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handleServerInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := s.formService.ServerInfo(form.ServerInfoRequest{})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	responseText := s.formatServerInfoResult(result)
	return mcp.NewToolResultText(responseText), nil
}

// Formatting methods
func (s *Server) formatSchemaInfoResult(result *form.SchemaInfoResult) string {
	text := "Form Field Schema\n"
	if result.Source != "" {
		text += fmt.Sprintf("Source: %s\n", result.Source)
	}
	text += fmt.Sprintf("Parts: %d\n", result.PartCount)
	text += fmt.Sprintf("Fields: %d\n", result.FieldCount)

	for i, part := range result.Parts {
		name := part.Name
		if name == "" {
			name = fmt.Sprintf("Part %d", i+1)
		}
		text += fmt.Sprintf("\n%s (%d fields)\n", name, part.FieldCount)
		for _, id := range part.FieldIDs {
			text += fmt.Sprintf("  • %s\n", id)
		}
	}

	if len(result.DuplicateFieldIDs) > 0 {
		text += fmt.Sprintf("\n⚠️  Duplicate field ids: %s\n", strings.Join(result.DuplicateFieldIDs, ", "))
	}
	if len(result.AmbiguousMappings) > 0 {
		text += "\n⚠️  Value mappings that cannot be reversed uniquely:\n"
		ids := make([]string, 0, len(result.AmbiguousMappings))
		for id := range result.AmbiguousMappings {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			text += fmt.Sprintf("  %s: %s\n", id, strings.Join(result.AmbiguousMappings[id], ", "))
		}
	}

	return text
}

func (s *Server) formatMapProfileResult(result *form.MapProfileResult) string {
	text := fmt.Sprintf("Resolved %d field value(s) for profile %s\n", result.FieldCount, result.ProfileID)

	for i, field := range result.Fields {
		text += fmt.Sprintf("\n%d. %s = %q\n", i+1, field.Field.FieldID, field.Value)
		text += fmt.Sprintf("   PDF field: %s\n", field.PDFFieldName)
		if field.Field.ItemNumber != "" {
			text += fmt.Sprintf("   Item: %s\n", field.Field.ItemNumber)
		}
	}

	return text
}

func (s *Server) formatValidateProfileResult(result *form.ValidateProfileResult) string {
	var text string
	if result.Valid {
		text = fmt.Sprintf("Profile %s is valid: %d field(s) checked\n", result.ProfileID, result.CheckedFields)
	} else {
		text = fmt.Sprintf("Profile %s failed validation: %d of %d field(s) rejected\n",
			result.ProfileID, result.FailedFields, result.CheckedFields)
	}

	for _, part := range result.Parts {
		text += fmt.Sprintf("\n%s: %s\n", part.Name, part.Summary)
		for _, e := range part.Errors {
			text += fmt.Sprintf("  • %s: %s\n", e.FieldID, e.Message)
		}
	}

	return text
}

func (s *Server) formatFillFormResult(result *form.FillFormResult) string {
	text := fmt.Sprintf("Filled form for profile %s\n", result.ProfileID)
	text += fmt.Sprintf("Output: %s\n", result.OutputPath)
	if result.Flattened {
		text += "Variant: print-ready (flattened)\n"
	} else {
		text += "Variant: editable\n"
	}
	text += fmt.Sprintf("Size: %d bytes\n", result.SizeBytes)
	text += fmt.Sprintf("Fields filled: %d of %d\n", result.FilledCount, result.FieldCount)

	if len(result.FailedFields) > 0 {
		text += fmt.Sprintf("\n⚠️  %d field(s) could not be written:\n", len(result.FailedFields))
		for _, failed := range result.FailedFields {
			text += fmt.Sprintf("  • %s (%s): %s\n", failed.FieldID, failed.PDFFieldName, failed.Reason)
		}
	}

	return text
}

func (s *Server) formatGenerateVersionsResult(result *form.GenerateVersionsResult) string {
	text := fmt.Sprintf("Generated both versions for profile %s\n", result.ProfileID)
	text += fmt.Sprintf("Editable: %s (%d bytes)\n", result.EditablePath, result.EditableSize)
	text += fmt.Sprintf("Print-ready: %s (%d bytes)\n", result.FlattenedPath, result.FlattenedSize)
	text += fmt.Sprintf("Fields filled: %d\n", result.FilledCount)

	if len(result.FailedFields) > 0 {
		text += fmt.Sprintf("\n⚠️  %d field(s) could not be written:\n", len(result.FailedFields))
		for _, failed := range result.FailedFields {
			text += fmt.Sprintf("  • %s (%s): %s\n", failed.FieldID, failed.PDFFieldName, failed.Reason)
		}
	}

	return text
}

func (s *Server) formatFormFieldsResult(result *form.FormFieldsResult) string {
	text := fmt.Sprintf("Found %d form field(s) in: %s\n", result.FieldCount, result.Template)

	for i, field := range result.Fields {
		text += fmt.Sprintf("\n%d. %s\n", i+1, field.FullName)
		text += fmt.Sprintf("   Type: %s\n", field.Type)
		if field.Value != "" {
			text += fmt.Sprintf("   Value: %s\n", field.Value)
		}
		if len(field.OnStates) > 0 {
			text += fmt.Sprintf("   On states: %s\n", strings.Join(field.OnStates, ", "))
		}
		if len(field.Options) > 0 {
			text += fmt.Sprintf("   Options: %s\n", strings.Join(field.Options, ", "))
		}
		if field.MaxLen > 0 {
			text += fmt.Sprintf("   Max length: %d\n", field.MaxLen)
		}
		if field.ReadOnly {
			text += "   Read-only\n"
		}
	}

	return text
}

func (s *Server) formatReadFormResult(result *form.ReadFormResult) string {
	text := fmt.Sprintf("Read %d field value(s) from: %s\n", result.FieldCount, result.Path)

	if len(result.Values) > 0 {
		ids := make([]string, 0, len(result.Values))
		for id := range result.Values {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		text += "\nValues:\n"
		for _, id := range ids {
			text += fmt.Sprintf("  %s: %s\n", id, result.Values[id])
		}
	}

	if result.ProfileID != "" {
		if result.ProfileUpdated {
			text += fmt.Sprintf("\nProfile %s was updated with the values above.\n", result.ProfileID)
		} else {
			text += fmt.Sprintf("\nProfile %s was left unchanged.\n", result.ProfileID)
		}
	}

	return text
}

func (s *Server) formatTemplateInfoResult(result *form.TemplateInfoResult) string {
	text := "Form Template Information\n"
	text += fmt.Sprintf("Template: %s\n", result.Template)
	text += fmt.Sprintf("Pages: %d\n", result.PageCount)
	text += fmt.Sprintf("Size: %d bytes\n", result.SizeBytes)

	if result.Title != "" {
		text += fmt.Sprintf("Title: %s\n", result.Title)
	}
	if result.Producer != "" {
		text += fmt.Sprintf("Producer: %s\n", result.Producer)
	}

	text += fmt.Sprintf("Form fields: %d\n", result.FieldCount)
	if len(result.FieldTypes) > 0 {
		types := make([]string, 0, len(result.FieldTypes))
		for fieldType := range result.FieldTypes {
			types = append(types, fieldType)
		}
		sort.Strings(types)
		for _, fieldType := range types {
			text += fmt.Sprintf("  %s: %d\n", fieldType, result.FieldTypes[fieldType])
		}
	}

	if result.TextPreview != "" {
		text += "\nText preview:\n"
		text += result.TextPreview
		text += "\n"
	}

	return text
}

func (s *Server) formatServerInfoResult(result *form.ServerInfoResult) string {
	text := fmt.Sprintf("📋 %s v%s - Server Information\n", result.ServerName, result.Version)
	text += fmt.Sprintf("🔌 Mode: %s\n", result.Mode)
	text += fmt.Sprintf("📁 Profiles Directory: %s\n", result.ProfilesDirectory)
	if result.TemplatesDirectory != "" {
		text += fmt.Sprintf("📁 Templates Directory: %s\n", result.TemplatesDirectory)
	}
	text += fmt.Sprintf("📁 Output Directory: %s\n", result.OutputDirectory)
	if result.TemplateSource != "" {
		text += fmt.Sprintf("📄 Template: %s\n", result.TemplateSource)
	}
	text += fmt.Sprintf("🗂  Schema: %d part(s), %d field(s)\n", result.SchemaParts, result.SchemaFields)
	if result.SchemaSource != "" {
		text += fmt.Sprintf("   Source: %s\n", result.SchemaSource)
	}
	text += fmt.Sprintf("✏️  Mark token: %s\n", result.MarkToken)
	text += fmt.Sprintf("🌐 Locale: %s\n", result.Locale)
	text += fmt.Sprintf("📏 Max File Size: %d MB\n\n", result.MaxFileSize/(1024*1024))

	// Stored profiles
	if len(result.Profiles) > 0 {
		text += fmt.Sprintf("👤 Stored Profiles (%d):\n", len(result.Profiles))
		for i, id := range result.Profiles {
			if i >= 10 { // Limit to first 10 profiles for readability
				text += fmt.Sprintf("   ... and %d more\n", len(result.Profiles)-10)
				break
			}
			text += fmt.Sprintf("   %d. %s\n", i+1, id)
		}
		text += "\n"
	} else {
		text += "👤 Stored Profiles: none yet\n\n"
	}

	// Available tools
	text += "🛠️  Available Tools:\n"
	for _, tool := range result.AvailableTools {
		text += fmt.Sprintf("\n• %s\n", tool.Name)
		text += fmt.Sprintf("  Description: %s\n", tool.Description)
		text += fmt.Sprintf("  Usage: %s\n", tool.Usage)
		text += fmt.Sprintf("  Parameters: %s\n", tool.Parameters)
	}

	// Usage guidance
	text += "\n" + result.UsageGuidance

	return text
}

// Run starts the MCP server in the configured mode
func (s *Server) Run(ctx context.Context) error {
	if s.config.IsServerMode() {
		return s.runServerMode(ctx)
	}
	return s.runStdioMode(ctx)
}

// runStdioMode serves the MCP protocol over stdin and stdout.
func (s *Server) runStdioMode(_ context.Context) error {
	s.logger.Debug("starting MCP server in stdio mode", map[string]interface{}{
		"profiles_dir": s.config.ProfilesDir,
		"output_dir":   s.config.OutputDir,
	})

	// Use the mark3labs/mcp-go server.ServeStdio function
	if err := server.ServeStdio(s.mcpServer); err != nil {
		return fmt.Errorf("failed to serve stdio: %w", err)
	}
	return nil
}

// runServerMode serves the MCP protocol over SSE on the configured address.
func (s *Server) runServerMode(ctx context.Context) error {
	// A context canceled before startup must not leave a listener behind.
	if err := ctx.Err(); err != nil {
		return err
	}

	sse := server.NewSSEServer(s.mcpServer)

	s.logger.Info("starting MCP server in SSE mode", map[string]interface{}{
		"address": s.config.Address(),
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- sse.Start(s.config.Address())
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := sse.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down sse server: %w", err)
		}
		return nil
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to serve sse: %w", err)
		}
		return nil
	}
}
