package descriptions

import "sort"

// Tool descriptions with practical examples and use cases

const (
	PDFDetectFieldsDescription = `Find the fillable regions of a flat PDF form and report them without changing anything.

**When to use:** Before converting, to preview which checkboxes and text blanks will become form fields, or to feed field positions to another system.

**How it works:** Pages with selectable text are read directly: checkbox symbols become checkboxes, underscore blanks become text fields, and "Label:" text gets a field to its right when a page has no blanks. Scanned pages are read by the remote OCR service and located with local OCR.

**Examples:**
• Preview a form: "Which fields would intake-form.pdf get?"
• Check a scan: "Detect fields in scanned-application.pdf and show the strategy per page"

**Response:** JSON with run_id, total_fields, and per page the strategy (native, ocr, none) and every field's name, kind (checkbox or text) and rectangle in points from the page's top-left corner. Warnings list recoverable problems such as an unreachable OCR service.

**Best practices:** Run on one file first; a page reported as "none" had no text and no usable OCR markup.`

	PDFConvertAcroFormDescription = `Make a flat PDF form fillable by adding an AcroForm field for every detected checkbox and text blank.

**When to use:** A form was printed to PDF or scanned and has no interactive fields.

**How it works:** Runs the same detection as pdf_detect_fields, attaches one widget per field named page{N}_field{M}, and writes the document to the output path only once it is complete.

**Examples:**
• Default output: "Convert consent.pdf" writes consent_editable.pdf next to it
• Explicit output: "Convert scan.pdf to scan-fillable.pdf"

**Common workflows:**
1. pdf_detect_fields → review → pdf_convert_acroform
2. pdf_convert_acroform → open the output in a PDF viewer and fill it in

**Best practices:** Field placement is approximate; review the output. Scanned pages need the remote OCR key configured.`

	PDFServerInfoDescription = `Show the server's configuration and tools.

**When to use:** To find the directory tools may read and write, the size limit, and whether remote OCR is configured.

**Response:** Server name and version, directory, limits, OCR settings and the list of tools.`
)

// ToolDescriptions maps tool names to their descriptions
var ToolDescriptions = map[string]string{
	"pdf_detect_fields":    PDFDetectFieldsDescription,
	"pdf_convert_acroform": PDFConvertAcroFormDescription,
	"pdf_server_info":      PDFServerInfoDescription,
}

// GetToolDescription returns the description for a tool
func GetToolDescription(toolName string) string {
	if desc, exists := ToolDescriptions[toolName]; exists {
		return desc
	}
	return "Tool description not available"
}

// GetAllToolNames returns the names of all tools, sorted
func GetAllToolNames() []string {
	names := make([]string, 0, len(ToolDescriptions))
	for name := range ToolDescriptions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
