package wrapper

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// Default appearances: auto-sized Helvetica for text, ZapfDingbats check
// marks for checkboxes
const (
	textFieldDA     = "/Helv 0 Tf 0 g"
	checkboxFieldDA = "/ZaDb 0 Tf 0 g"
	checkboxCaption = "4" // ZapfDingbats check mark
	checkboxOn      = "Yes"
	checkMarkWidth  = 0.846 // advance of the check mark per unit of font size

	annotFlagPrint = 4
)

// formFonts are the resource names the default appearances use, with their
// standard 14 base fonts
var formFonts = [][2]string{
	{"Helv", "Helvetica"},
	{"ZaDb", "ZapfDingbats"},
}

// PageBox is the visible page rectangle in PDF user space
type PageBox struct {
	LLX, LLY, URX, URY float64
}

// Width returns the horizontal extent
func (b PageBox) Width() float64 { return b.URX - b.LLX }

// Height returns the vertical extent
func (b PageBox) Height() float64 { return b.URY - b.LLY }

// PDFCPUForm holds a pdfcpu model of the document and adds AcroForm fields
// to it
type PDFCPUForm struct {
	ctx      *model.Context
	acroForm types.Dict
	fonts    types.Dict // AcroForm DR fonts
	fields   types.Array
	closed   bool
}

// OpenPDFCPUForm reads the file into a pdfcpu context in relaxed validation
// mode. The file is read into memory so nothing holds it open while the
// document is edited.
func OpenPDFCPUForm(path string) (*PDFCPUForm, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &WrapperError{
			Library: LibraryPDFCPU,
			Op:      "open_file",
			Err:     fmt.Errorf("failed to open file: %w", err),
		}
	}
	return ReadPDFCPUForm(bytes.NewReader(data))
}

// ReadPDFCPUForm reads a document from rs
func ReadPDFCPUForm(rs io.ReadSeeker) (*PDFCPUForm, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(rs, conf)
	if err != nil {
		return nil, &WrapperError{
			Library: LibraryPDFCPU,
			Op:      "open",
			Err:     fmt.Errorf("failed to read PDF context: %w", err),
		}
	}

	if err := ctx.EnsurePageCount(); err != nil {
		return nil, &WrapperError{
			Library: LibraryPDFCPU,
			Op:      "open",
			Err:     fmt.Errorf("failed to ensure page count: %w", err),
		}
	}

	return &PDFCPUForm{ctx: ctx}, nil
}

// PageCount returns the number of pages in the document
func (f *PDFCPUForm) PageCount() int {
	return f.ctx.PageCount
}

// PageBox returns the visible box of the 1-based page: the crop box when
// present, else the media box
func (f *PDFCPUForm) PageBox(pageNum int) (PageBox, error) {
	if f.closed {
		return PageBox{}, &WrapperError{Library: LibraryPDFCPU, Op: "page_box", Err: ErrDocumentClosed.Err}
	}
	_, _, inh, err := f.ctx.PageDict(pageNum, false)
	if err != nil {
		return PageBox{}, &WrapperError{
			Library: LibraryPDFCPU,
			Op:      "page_box",
			Err:     fmt.Errorf("page %d: %w", pageNum, err),
		}
	}
	if inh == nil {
		return PageBox{}, &WrapperError{Library: LibraryPDFCPU, Op: "page_box", Err: fmt.Errorf("page %d has no box", pageNum)}
	}

	r := inh.MediaBox
	if inh.CropBox != nil {
		r = inh.CropBox
	}
	if r == nil {
		return PageBox{}, &WrapperError{Library: LibraryPDFCPU, Op: "page_box", Err: fmt.Errorf("page %d has no media box", pageNum)}
	}
	return PageBox{LLX: r.LL.X, LLY: r.LL.Y, URX: r.UR.X, URY: r.UR.Y}, nil
}

// AddWidget creates a merged field/widget annotation on the 1-based page.
// box converts the page-space rectangle back to PDF user space.
func (f *PDFCPUForm) AddWidget(pageNum int, box PageBox, w Widget) error {
	if f.closed {
		return &WrapperError{Library: LibraryPDFCPU, Op: "add_widget", Err: ErrDocumentClosed.Err}
	}
	if w.Name == "" || w.Rect.Empty() {
		return &WrapperError{
			Library: LibraryPDFCPU,
			Op:      "add_widget",
			Err:     fmt.Errorf("%w: name %q rect %s", ErrInvalidWidget.Err, w.Name, w.Rect),
		}
	}

	pageDict, pageRef, _, err := f.ctx.PageDict(pageNum, false)
	if err != nil {
		return &WrapperError{Library: LibraryPDFCPU, Op: "add_widget", Err: fmt.Errorf("page %d: %w", pageNum, err)}
	}
	if err := f.ensureAcroForm(); err != nil {
		return err
	}

	d := widgetDict(w, box)
	if w.Kind == WidgetCheckbox {
		ap, err := f.checkboxAppearance(w.Rect.Width(), w.Rect.Height())
		if err != nil {
			return &WrapperError{Library: LibraryPDFCPU, Op: "add_widget", Err: fmt.Errorf("failed to build appearance: %w", err)}
		}
		d.Insert("AP", ap)
	}
	if pageRef != nil {
		d.Insert("P", *pageRef)
	}
	ref, err := f.ctx.IndRefForNewObject(d)
	if err != nil {
		return &WrapperError{Library: LibraryPDFCPU, Op: "add_widget", Err: fmt.Errorf("failed to register widget: %w", err)}
	}

	annots := types.Array{}
	if obj, found := pageDict.Find("Annots"); found {
		existing, err := f.ctx.DereferenceArray(obj)
		if err != nil {
			return &WrapperError{Library: LibraryPDFCPU, Op: "add_widget", Err: fmt.Errorf("page %d annotations: %w", pageNum, err)}
		}
		annots = append(annots, existing...)
	}
	pageDict.Update("Annots", append(annots, *ref))

	f.fields = append(f.fields, *ref)
	f.acroForm.Update("Fields", f.fields)
	return nil
}

// FieldCount returns the number of top-level AcroForm fields
func (f *PDFCPUForm) FieldCount() (int, error) {
	root, err := f.ctx.Catalog()
	if err != nil {
		return 0, err
	}
	obj, found := root.Find("AcroForm")
	if !found {
		return 0, nil
	}
	acroForm, err := f.ctx.DereferenceDict(obj)
	if err != nil || acroForm == nil {
		return 0, err
	}
	fieldsObj, found := acroForm.Find("Fields")
	if !found {
		return 0, nil
	}
	fields, err := f.ctx.DereferenceArray(fieldsObj)
	if err != nil {
		return 0, err
	}
	return len(fields), nil
}

// Write optimizes the document, dropping unreferenced objects, and writes
// it to w
func (f *PDFCPUForm) Write(w io.Writer) error {
	if f.closed {
		return &WrapperError{Library: LibraryPDFCPU, Op: "write", Err: ErrDocumentClosed.Err}
	}
	if err := api.OptimizeContext(f.ctx); err != nil {
		return &WrapperError{Library: LibraryPDFCPU, Op: "write", Err: fmt.Errorf("failed to optimize: %w", err)}
	}
	if err := api.WriteContext(f.ctx, w); err != nil {
		return &WrapperError{Library: LibraryPDFCPU, Op: "write", Err: fmt.Errorf("failed to write: %w", err)}
	}
	return nil
}

// Close releases the context
func (f *PDFCPUForm) Close() error {
	f.closed = true
	return nil
}

// ensureAcroForm finds or creates the catalog's AcroForm dictionary, with
// NeedAppearances set and the fonts the default appearances refer to
func (f *PDFCPUForm) ensureAcroForm() error {
	if f.acroForm != nil {
		return nil
	}

	root, err := f.ctx.Catalog()
	if err != nil {
		return &WrapperError{Library: LibraryPDFCPU, Op: "acroform", Err: fmt.Errorf("failed to get catalog: %w", err)}
	}

	var acroForm types.Dict
	if obj, found := root.Find("AcroForm"); found {
		acroForm, err = f.ctx.DereferenceDict(obj)
		if err != nil {
			return &WrapperError{Library: LibraryPDFCPU, Op: "acroform", Err: fmt.Errorf("failed to dereference AcroForm: %w", err)}
		}
	}
	if acroForm == nil {
		acroForm = types.NewDict()
		ref, err := f.ctx.IndRefForNewObject(acroForm)
		if err != nil {
			return &WrapperError{Library: LibraryPDFCPU, Op: "acroform", Err: fmt.Errorf("failed to register AcroForm: %w", err)}
		}
		root.Update("AcroForm", *ref)
	}

	fields := types.Array{}
	if obj, found := acroForm.Find("Fields"); found {
		existing, err := f.ctx.DereferenceArray(obj)
		if err != nil {
			return &WrapperError{Library: LibraryPDFCPU, Op: "acroform", Err: fmt.Errorf("failed to dereference Fields: %w", err)}
		}
		fields = append(fields, existing...)
	}
	acroForm.Update("Fields", fields)
	acroForm.Update("NeedAppearances", types.Boolean(true))
	if _, found := acroForm.Find("DA"); !found {
		acroForm.Insert("DA", types.StringLiteral(textFieldDA))
	}
	if err := f.ensureFormFonts(acroForm); err != nil {
		return err
	}

	f.acroForm = acroForm
	f.fields = fields
	return nil
}

func (f *PDFCPUForm) ensureFormFonts(acroForm types.Dict) error {
	dr := types.NewDict()
	if obj, found := acroForm.Find("DR"); found {
		existing, err := f.ctx.DereferenceDict(obj)
		if err != nil {
			return &WrapperError{Library: LibraryPDFCPU, Op: "acroform", Err: fmt.Errorf("failed to dereference DR: %w", err)}
		}
		if existing != nil {
			dr = existing
		}
	}

	fonts := types.NewDict()
	if obj, found := dr.Find("Font"); found {
		existing, err := f.ctx.DereferenceDict(obj)
		if err != nil {
			return &WrapperError{Library: LibraryPDFCPU, Op: "acroform", Err: fmt.Errorf("failed to dereference DR fonts: %w", err)}
		}
		if existing != nil {
			fonts = existing
		}
	}

	for _, ff := range formFonts {
		name, base := ff[0], ff[1]
		if _, found := fonts.Find(name); found {
			continue
		}
		font := types.NewDict()
		font.Insert("Type", types.Name("Font"))
		font.Insert("Subtype", types.Name("Type1"))
		font.Insert("BaseFont", types.Name(base))
		if name == "Helv" {
			font.Insert("Encoding", types.Name("WinAnsiEncoding"))
		}
		ref, err := f.ctx.IndRefForNewObject(font)
		if err != nil {
			return &WrapperError{Library: LibraryPDFCPU, Op: "acroform", Err: fmt.Errorf("failed to register font %s: %w", name, err)}
		}
		fonts.Insert(name, *ref)
	}

	dr.Update("Font", fonts)
	acroForm.Update("DR", dr)
	f.fonts = fonts
	return nil
}

// checkboxAppearance builds the normal appearances of a w by h checkbox: a
// centred check mark for the on state, nothing for Off
func (f *PDFCPUForm) checkboxAppearance(w, h float64) (types.Dict, error) {
	size := min(w, h) * 0.8
	on := fmt.Sprintf("q 0 g BT /ZaDb %.2f Tf %.2f %.2f Td (%s) Tj ET Q",
		size, (w-size*checkMarkWidth)/2, (h-size*0.7)/2, checkboxCaption)

	n := types.NewDict()
	for _, state := range [][2]string{{checkboxOn, on}, {"Off", ""}} {
		ref, err := f.appearanceStream(w, h, state[1])
		if err != nil {
			return nil, err
		}
		n.Insert(state[0], *ref)
	}
	ap := types.NewDict()
	ap.Insert("N", n)
	return ap, nil
}

func (f *PDFCPUForm) appearanceStream(w, h float64, content string) (*types.IndirectRef, error) {
	sd, err := f.ctx.NewStreamDictForBuf([]byte(content))
	if err != nil {
		return nil, err
	}
	sd.InsertName("Type", "XObject")
	sd.InsertName("Subtype", "Form")
	sd.Insert("BBox", types.Array{types.Float(0), types.Float(0), types.Float(w), types.Float(h)})
	res := types.NewDict()
	res.Insert("Font", f.fonts)
	sd.Insert("Resources", res)
	if err := sd.Encode(); err != nil {
		return nil, err
	}
	return f.ctx.IndRefForNewObject(*sd)
}

// widgetDict builds the merged field and widget annotation dictionary
func widgetDict(w Widget, box PageBox) types.Dict {
	llx := box.LLX + w.Rect.X0
	urx := box.LLX + w.Rect.X1
	lly := box.URY - w.Rect.Y1
	ury := box.URY - w.Rect.Y0

	d := types.NewDict()
	d.Insert("Type", types.Name("Annot"))
	d.Insert("Subtype", types.Name("Widget"))
	d.Insert("T", types.StringLiteral(w.Name))
	d.Insert("Rect", types.Array{types.Float(llx), types.Float(lly), types.Float(urx), types.Float(ury)})
	d.Insert("F", types.Integer(annotFlagPrint))
	d.Insert("Ff", types.Integer(w.Flags))

	border := types.NewDict()
	border.Insert("W", types.Integer(1))
	border.Insert("S", types.Name("S"))
	d.Insert("BS", border)

	mk := types.NewDict()
	mk.Insert("BC", types.Array{types.Float(0), types.Float(0), types.Float(0)})

	switch w.Kind {
	case WidgetCheckbox:
		d.Insert("FT", types.Name("Btn"))
		d.Insert("V", types.Name("Off"))
		d.Insert("AS", types.Name("Off"))
		d.Insert("DA", types.StringLiteral(checkboxFieldDA))
		mk.Insert("CA", types.StringLiteral(checkboxCaption))
	default:
		d.Insert("FT", types.Name("Tx"))
		d.Insert("DA", types.StringLiteral(textFieldDA))
	}
	d.Insert("MK", mk)
	return d
}
