package descriptions

// Comprehensive tool descriptions with practical examples and use cases

const (
	// Profile Tools
	ProfileCreateDescription = `Create a new empty applicant profile for Form I-765.

**When to use:** Starting a new application, or whenever you need a clean slate to collect applicant data.

**Why it's useful:** The returned profile_id is the handle every other tool takes; profiles persist on the server so data entry can span many sessions.

**Examples:**
• New application: "Create a profile for an initial EAD application"
• Multiple applicants: "Create one profile per family member before entering data"
• Sandbox: "Create a throwaway profile to test a mapping"

**Common workflows:**
1. New Application: Create profile → Enter data with profile_set_field → Validate → Fill
2. Batch Intake: Create profiles → Import exported data → Generate forms
3. Experimentation: Create profile → Try values → Reset when done

**Best practices:** Keep one profile per applicant; note the profile_id, server_info lists the known ids if it is lost.`

	ProfileImportDescription = `Restore an applicant profile from previously exported JSON.

**When to use:** Continuing work that was exported earlier, or moving a profile between servers.

**Why it's useful:** Round-trips the full profile including its id and version, so an export taken before risky edits acts as a backup.

**Examples:**
• Resume work: "Import the JSON saved from last week's session"
• Migration: "Move profiles from the staging server to production"
• Recovery: "Restore the backup taken before the bulk edit"

**Common workflows:**
1. Session Handoff: Export at end of session → Store JSON → Import next session
2. Backup & Restore: Export before edits → Edit → Import if the edits go wrong
3. Transfer: Export on one machine → Import on another → Continue filling

**Best practices:** Import validates the JSON shape and rejects snapshots without a profile id; keep exports alongside the application records.`

	ProfileExportDescription = `Export an applicant profile as formatted JSON.

**When to use:** Saving applicant data outside the server, inspecting exactly what has been entered, or preparing a backup.

**Why it's useful:** The export is the complete profile document, readable by humans and accepted verbatim by profile_import.

**Examples:**
• Backup: "Export profile 6f1a before resetting it"
• Review: "Export the profile so the applicant can verify their data"
• Audit: "Keep the exported JSON with the case file"

**Common workflows:**
1. Backup: Export → Store → Import later if needed
2. Data Review: Export → Check values → Correct with profile_set_field
3. Case Records: Fill form → Export profile → Archive both together

**Best practices:** Export after finishing data entry; the JSON is indented for review and diffs cleanly between versions.`

	ProfileSetFieldDescription = `Write one value into a profile at a dot-notation path.

**When to use:** Entering or correcting applicant data field by field.

**Why it's useful:** Paths address the typed profile document directly (personalInfo.familyName, immigrationDetails.alienNumber), digit segments index lists, and every write bumps the profile version.

**Examples:**
• Basic data: "Set personalInfo.familyName to GARCIA"
• Nested lists: "Set otherNames.0.givenName for a previously used name"
• Eligibility: "Set eligibilityInfo.applicationReason to renewal"

**Common workflows:**
1. Data Entry: schema_info for the paths → Set each field → validate_profile
2. Correction: validate_profile → Fix the reported paths → Re-validate
3. Interview Capture: Ask the applicant → Set the field → Move to the next item

**Best practices:** Use schema_info to see which paths the form actually maps; unknown paths are rejected rather than silently stored.`

	ProfileResetDescription = `Reset a profile to a fresh empty instance, keeping its id.

**When to use:** Discarding all entered data while keeping the same handle, for example after a test run.

**Why it's useful:** Callers holding the profile_id stay valid; only the data is cleared.

**Examples:**
• Start over: "Reset profile 6f1a after the applicant corrected their history"
• Test cleanup: "Reset the sandbox profile between experiments"
• Re-intake: "Clear the profile before a fresh interview"

**Common workflows:**
1. Restart: Export as backup → Reset → Re-enter data
2. Testing: Fill with test data → Generate forms → Reset
3. Correction: Reset → Import a known-good export

**Best practices:** Export first if there is any chance the data is still needed; reset is immediate and not reversible.`

	// Schema and Mapping Tools
	SchemaInfoDescription = `Describe the loaded field schema: parts, field ids, and authoring problems.

**When to use:** Before data entry, to learn the data paths the form maps; or when diagnosing why a value does not land on the form.

**Why it's useful:** Shows the form's structure as the server sees it, including duplicate field ids and ambiguous reverse mappings the loader flagged.

**Examples:**
• Discover paths: "List the fields of Part 2 to know what to collect"
• Schema QA: "Check a newly authored schema for duplicate ids"
• Debugging: "See which pdf field family_name targets"

**Common workflows:**
1. Intake Preparation: schema_info → Collect the listed data → Enter with profile_set_field
2. Schema Authoring: Load a draft schema → schema_info → Fix reported duplicates
3. Mapping Debug: schema_info → map_profile → Compare expected and resolved values

**Best practices:** The part names and item numbers mirror the official form, so the output doubles as a data-collection checklist.`

	MapProfileDescription = `Resolve a profile into the exact field values that would be written onto the form.

**When to use:** Previewing a fill before producing a PDF, or checking how value mappings and date formats apply.

**Why it's useful:** Shows the post-mapping values (checkbox marks, MM/DD/YYYY dates, radio export values) in form order, without touching any file.

**Examples:**
• Preview: "Show what profile 6f1a would put on the form"
• Mapping check: "Verify gender female maps to the Female export value"
• Dry run: "Confirm the date of birth renders as 01/15/2025"

**Common workflows:**
1. Pre-fill Review: map_profile → Verify values → fill_form
2. Mapping Debug: Set a field → map_profile → Check the resolved value
3. Applicant Confirmation: map_profile → Read values back to the applicant → Fill

**Best practices:** Run after validate_profile; validation checks rules, mapping shows the concrete output.`

	ValidateProfileDescription = `Check a profile against the schema's validation rules.

**When to use:** Before filling, and after any round of data entry.

**Why it's useful:** Reports failures per form part with localized messages and the exact data path to fix, so problems are caught before they reach a PDF.

**Examples:**
• Pre-fill gate: "Validate profile 6f1a before generating the packet"
• Progress check: "See which required fields are still missing"
• Format check: "Confirm the A-Number has 7 to 9 digits"

**Common workflows:**
1. Fill Gate: validate_profile → Fix failures → fill_form
2. Iterative Entry: Enter a section → Validate → Continue with the next section
3. QA: Import a profile → Validate → Report problems to the data owner

**Best practices:** A valid result checks format rules, not truth; the applicant still has to verify the content.`

	// Form Filling Tools
	FillFormDescription = `Fill the I-765 template with a profile's data and write the PDF.

**When to use:** Producing the filled form once the profile validates.

**Why it's useful:** Writes an editable PDF by default or a flattened print-ready copy on request, and reports exactly which fields were filled and which found no match.

**Examples:**
• Standard fill: "Fill the form from profile 6f1a"
• Print copy: "Fill with flatten=true for a copy that cannot be edited"
• Named output: "Fill to output_name=garcia_i765"

**Common workflows:**
1. Standard: validate_profile → fill_form → Review the editable PDF
2. Submission: fill_form with flatten → Print → Sign
3. Iteration: Fill → read_form to verify → Correct profile → Re-fill

**Best practices:** Check failed_fields in the result; unmatched fields never abort the fill, they are reported so the template or schema can be fixed.`

	GenerateVersionsDescription = `Produce the editable and the flattened fill in one pass.

**When to use:** When both copies are needed, typically editable for review and flattened for printing.

**Why it's useful:** Both versions come from the same resolved values, so they cannot drift apart the way two separate fills could.

**Examples:**
• Full packet: "Generate both versions for the attorney and the applicant"
• Review and print: "Editable for the reviewer, flattened for the mail-in copy"
• Archival: "Keep the flattened copy with the case record"

**Common workflows:**
1. Packet: validate_profile → generate_versions → Distribute each copy
2. Review Cycle: Review the editable copy → Correct → Regenerate both
3. Records: Generate → Archive flattened → Keep editable for amendments

**Best practices:** The files are written as <name>_editable.pdf and <name>_flattened.pdf under the output directory.`

	FormFieldsDescription = `Enumerate the interactive fields of the form template.

**When to use:** Inspecting a template's actual field names, types, and current values, for example when authoring or debugging a schema.

**Why it's useful:** Shows the document's real AcroForm inventory including hierarchical names, radio on-states and readonly flags, which is what the fill engine matches against.

**Examples:**
• Schema authoring: "List the fields of the new template edition to map them"
• Debugging: "Check whether Line7_AlienNumber exists under Part2"
• Edition changes: "Diff field names between two template editions"

**Common workflows:**
1. Schema Authoring: form_fields → Write descriptors → schema_info to verify
2. Fill Debug: fill_form reports a failed field → form_fields → Fix the mapping
3. Template Upgrade: form_fields on the new edition → Adjust schema → Re-fill

**Best practices:** Pass template_path to inspect a specific file; without it the configured template is used.`

	ReadFormDescription = `Read the values out of a filled form, optionally writing them back into a profile.

**When to use:** Recovering data from a previously filled PDF, or syncing manual edits made in a PDF viewer back into the profile.

**Why it's useful:** Values come back keyed by schema field id with checkboxes as the mark token, so the output feeds straight into a profile or a refill.

**Examples:**
• Recovery: "Read the filled PDF the applicant sent back"
• Sync: "Apply the viewer edits in output/i765_6f1a_editable.pdf to profile 6f1a"
• Inspection: "See what is currently entered in the draft PDF"

**Common workflows:**
1. Round Trip: fill_form → Applicant edits in a viewer → read_form with profile_id
2. Intake: Receive a filled PDF → read_form into a new profile → Validate
3. Verification: Fill → read_form → Compare with map_profile

**Best practices:** Flattened copies have no readable fields; read the editable version. Empty fields are omitted so reading never blanks profile data.`

	CreateFromScratchDescription = `Produce a plain worksheet listing a profile's form data when no template is available.

**When to use:** The official template cannot be fetched or is not configured, but the collected data still needs to go on paper.

**Why it's useful:** Generates a readable item-by-item listing (item number, label, value) from the same resolved values a fill would use.

**Examples:**
• Offline fallback: "Produce a worksheet while the template URL is unreachable"
• Data sheet: "Print the entered data for a review meeting"
• Custom title: "Generate the worksheet titled 'Garcia I-765 draft'"

**Common workflows:**
1. Fallback: fill_form fails with no template → create_pdf_from_scratch → Transcribe later
2. Review: Worksheet → Applicant checks values → Corrections via profile_set_field
3. Records: Keep the worksheet until the official fill is produced

**Best practices:** The worksheet is a static listing, not a fillable form; switch to fill_form as soon as a template is available.`

	// Document Tools
	TemplateInfoDescription = `Inspect the form template document: pages, field inventory, and metadata.

**When to use:** Checking a template before filling, or verifying what a produced output file contains.

**Why it's useful:** Reports page count, per-type field counts, title, producer and a short text preview, enough to spot a wrong or flattened document immediately.

**Examples:**
• Template check: "Confirm the configured template has form fields before filling"
• Edition check: "Read the title and preview to verify the form edition"
• Output check: "Confirm the flattened output has zero interactive fields"

**Common workflows:**
1. Pre-fill: template_info → Confirm field count → fill_form
2. Troubleshooting: Fill produces failures → template_info → Compare with schema_info
3. Output QA: generate_versions → template_info on each output → Verify

**Best practices:** A template with zero fields cannot be filled; use create_pdf_from_scratch or find the fillable edition.`

	DetectDeviceDescription = `Classify the requesting client device and recommend a fill variant.

**When to use:** Deciding whether to hand out the editable or the flattened copy, typically driven by the client's user agent.

**Why it's useful:** Phones and small screens handle static PDFs better than AcroForm editing, so mobile clients get the flattened copy recommended.

**Examples:**
• Mobile client: "An iPhone user agent gets the flattened copy"
• Desktop client: "A desktop browser gets the editable copy"
• Width only: "screen_width=380 with no user agent classifies as mobile"

**Common workflows:**
1. Delivery: detect_device → fill_form with the recommended variant → Send
2. UI Hinting: detect_device → Label the download button accordingly
3. Both: generate_versions → Serve the recommended file per client

**Best practices:** The recommendation is a default, not a restriction; both variants remain available.`

	// Utility Tools
	ServerInfoDescription = `Get server information, the tool inventory, and usage guidance.

**When to use:** Starting a session, discovering capabilities, or troubleshooting configuration.

**Why it's useful:** Reports the configured directories, template and schema sources, the loaded schema's shape, the known profile ids, and a step-by-step usage guide.

**Examples:**
• Session start: "Check which schema and template are loaded"
• Lost id: "List the known profile ids"
• Troubleshooting: "Verify the output directory the server writes to"

**Common workflows:**
1. Session Startup: server_info → Pick or create a profile → Enter data
2. Debugging: server_info → Check sources and directories → Fix configuration
3. Discovery: server_info → Read the tool inventory → Plan the workflow

**Best practices:** Run at the start of a session; the usage guidance section walks through the whole fill pipeline.`
)

// ToolDescriptions maps tool names to their comprehensive descriptions
var ToolDescriptions = map[string]string{
	"profile_create":          ProfileCreateDescription,
	"profile_import":          ProfileImportDescription,
	"profile_export":          ProfileExportDescription,
	"profile_set_field":       ProfileSetFieldDescription,
	"profile_reset":           ProfileResetDescription,
	"schema_info":             SchemaInfoDescription,
	"map_profile":             MapProfileDescription,
	"validate_profile":        ValidateProfileDescription,
	"fill_form":               FillFormDescription,
	"generate_versions":       GenerateVersionsDescription,
	"form_fields":             FormFieldsDescription,
	"read_form":               ReadFormDescription,
	"create_pdf_from_scratch": CreateFromScratchDescription,
	"template_info":           TemplateInfoDescription,
	"detect_device":           DetectDeviceDescription,
	"server_info":             ServerInfoDescription,
}

// GetToolDescription returns the comprehensive description for a tool
func GetToolDescription(toolName string) string {
	if desc, exists := ToolDescriptions[toolName]; exists {
		return desc
	}
	return "Tool description not available"
}

// GetAllToolNames returns a list of all available tool names
func GetAllToolNames() []string {
	var names []string
	for name := range ToolDescriptions {
		names = append(names, name)
	}
	return names
}
