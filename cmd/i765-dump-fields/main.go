package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/visaflow/mcp-i765-filler/internal/form/fill"
	"github.com/visaflow/mcp-i765-filler/internal/form/mapper"
	"github.com/visaflow/mcp-i765-filler/internal/form/schema"
	"github.com/visaflow/mcp-i765-filler/internal/logging"
)

var (
	outputFormat = flag.String("format", "text", "Output format: text, json")
	resolve      = flag.Bool("resolve", false, "Resolve field values onto applicant data paths using the bundled schema")
	verbose      = flag.Bool("verbose", false, "Enable verbose output")
	help         = flag.Bool("help", false, "Show help message")
)

func main() {
	flag.Parse()

	if *help {
		printHelp()
		return
	}

	if flag.NArg() == 0 {
		fmt.Fprintf(os.Stderr, "Error: PDF file path required\n\n")
		printUsage()
		os.Exit(1)
	}

	pdfPath := flag.Arg(0)
	if _, err := os.Stat(pdfPath); os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Error: File not found: %s\n", pdfPath)
		os.Exit(1)
	}

	report, err := inspectForm(pdfPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error inspecting form: %v\n", err)
		os.Exit(1)
	}

	if err := outputReport(report); err != nil {
		fmt.Fprintf(os.Stderr, "Error outputting report: %v\n", err)
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Println("I-765 Dump Fields - Inspect the interactive fields of a form PDF")
	fmt.Println()
	fmt.Println("This tool lists every AcroForm field in a PDF along with its type, current")
	fmt.Println("value and constraints. Point it at a blank template to audit field names, or")
	fmt.Println("at a filled copy to check what a fill run actually wrote.")
	fmt.Println()
	printUsage()
	fmt.Println()
	fmt.Println("OPTIONS:")
	fmt.Println("  -format        Output format: text (default), json")
	fmt.Println("  -resolve       Resolve field values onto applicant data paths using the bundled schema")
	fmt.Println("  -verbose       Enable verbose output")
	fmt.Println("  -help          Show this help message")
	fmt.Println()
	fmt.Println("EXAMPLES:")
	fmt.Println("  i765-dump-fields i-765.pdf")
	fmt.Println("  i765-dump-fields -format json filled/i765_editable.pdf")
	fmt.Println("  i765-dump-fields -resolve filled/i765_editable.pdf")
	fmt.Println()
	fmt.Println("FIELD TYPES:")
	fmt.Println("  • text      Free text entry, possibly with a maximum length")
	fmt.Println("  • checkbox  Toggled by writing one of its on states")
	fmt.Println("  • radio     One selection from the listed on states")
	fmt.Println("  • choice    One selection from the listed options")
}

func printUsage() {
	fmt.Println("USAGE:")
	fmt.Println("  i765-dump-fields [OPTIONS] <pdf_file>")
}

// FieldReport is the complete field inventory for one form document.
type FieldReport struct {
	FilePath   string            `json:"file_path"`
	Success    bool              `json:"success"`
	PageCount  int               `json:"page_count,omitempty"`
	SizeBytes  int64             `json:"size_bytes"`
	Title      string            `json:"title,omitempty"`
	Producer   string            `json:"producer,omitempty"`
	FieldCount int               `json:"field_count"`
	Fields     []fill.Field      `json:"fields,omitempty"`
	Values     map[string]string `json:"values,omitempty"`
	Error      string            `json:"error,omitempty"`
}

func inspectForm(pdfPath string) (*FieldReport, error) {
	absPath, err := filepath.Abs(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	report := &FieldReport{FilePath: absPath}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	report.SizeBytes = int64(len(data))

	logger := logging.NewNopLogger()
	if *verbose {
		logger = logging.NewStructured("debug", "console")
		fmt.Printf("🔍 Inspecting form: %s\n\n", absPath)
	}

	processor := fill.NewProcessor(mapper.DefaultMarkToken, logger)

	details, err := processor.TemplateInfo(data)
	if err != nil {
		// Keep the failure in the report so json output stays uniform.
		report.Error = err.Error()
		return report, nil
	}
	report.PageCount = details.PageCount
	report.Title = details.Title
	report.Producer = details.Producer

	fields, err := processor.FormFieldNames(data)
	if err != nil {
		report.Error = err.Error()
		return report, nil
	}

	report.Success = true
	report.FieldCount = len(fields)
	report.Fields = fields

	if *resolve {
		fieldSchema := schema.NewLoader(nil, logger).Load(context.Background(), schema.DefaultSources())
		values, err := processor.ReadFormData(data, fieldSchema)
		if err != nil {
			report.Error = err.Error()
		} else {
			report.Values = values
		}
	}

	return report, nil
}

func outputReport(report *FieldReport) error {
	switch *outputFormat {
	case "json":
		return outputJSON(report)
	case "text":
		return outputText(report)
	default:
		return fmt.Errorf("unsupported output format: %s", *outputFormat)
	}
}

func outputJSON(report *FieldReport) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}

func outputText(report *FieldReport) error {
	if !report.Success {
		fmt.Printf("❌ Field inspection failed: %s\n", report.Error)
		return nil
	}

	if report.FieldCount == 0 {
		fmt.Println("⚠️  No form fields detected in the PDF")
		fmt.Println()
		fmt.Println("The document may be a scanned or flattened copy. A flattened fill")
		fmt.Println("intentionally carries no interactive fields.")
		return nil
	}

	fmt.Printf("✅ Found %d form fields in %s\n", report.FieldCount, filepath.Base(report.FilePath))
	if report.PageCount > 0 {
		fmt.Printf("📄 Pages: %d\n", report.PageCount)
	}
	if report.Title != "" {
		fmt.Printf("📋 Title: %s\n", report.Title)
	}
	fmt.Println()

	for i, field := range report.Fields {
		fmt.Printf("[%d] %s\n", i+1, field.FullName)
		fmt.Printf("    Type: %s\n", field.Type)

		if field.Value != "" {
			fmt.Printf("    Value: %s\n", field.Value)
		}

		if len(field.OnStates) > 0 {
			fmt.Printf("    On states: %s\n", strings.Join(field.OnStates, ", "))
		}

		if len(field.Options) > 0 {
			fmt.Printf("    Options: %s\n", strings.Join(field.Options, ", "))
		}

		properties := []string{}
		if field.Required {
			properties = append(properties, "Required")
		}
		if field.ReadOnly {
			properties = append(properties, "ReadOnly")
		}
		if len(properties) > 0 {
			fmt.Printf("    Properties: %v\n", properties)
		}

		if field.MaxLen > 0 {
			fmt.Printf("    Max Length: %d\n", field.MaxLen)
		}

		fmt.Println()
	}

	if len(report.Values) > 0 {
		fmt.Println("RESOLVED DATA")
		fmt.Println("=============")

		ids := make([]string, 0, len(report.Values))
		for id := range report.Values {
			ids = append(ids, id)
		}
		sort.Strings(ids)

		for _, id := range ids {
			fmt.Printf("  %s: %s\n", id, report.Values[id])
		}
		fmt.Println()
	}

	return nil
}

func init() {
	// Custom flag usage
	flag.Usage = func() {
		printHelp()
	}
}
