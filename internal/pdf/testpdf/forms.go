package testpdf

// MemberFieldName is the qualified name of the single field in MemberForm
const MemberFieldName = "topmostSubform[0].Page1[0].P[0].MbrName[1]"

// MemberForm is a single-page XFA-style hierarchy whose only terminal field is
// a merged field/widget holding "OLD_VALUE" with tooltip "MbrName".
func MemberForm(layout Layout) []byte {
	return NewBuilder(1).
		Add(1, "<< /Type /Catalog /Pages 2 0 R /AcroForm 4 0 R >>").
		Add(2, "<< /Type /Pages /Kids [3 0 R] /Count 1 >>").
		Add(3, "<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Annots [8 0 R] >>").
		Add(4, "<< /Fields [5 0 R] /DA (/Helv 0 Tf 0 g) >>").
		Add(5, "<< /T (topmostSubform[0]) /Kids [6 0 R] >>").
		Add(6, "<< /T (Page1[0]) /Parent 5 0 R /Kids [7 0 R] >>").
		Add(7, "<< /T (P[0]) /Parent 6 0 R /Kids [8 0 R] >>").
		Add(8, "<< /Type /Annot /Subtype /Widget /FT /Tx /T (MbrName[1]) /TU (MbrName) /V (OLD_VALUE) "+
			"/Parent 7 0 R /P 3 0 R /Rect [100 700 300 720] /F 4 >>").
		Build(layout)
}

// SplitWidgetForm spreads fields over two pages with widgets kept as separate
// objects that duplicate the field's T and V keys:
//
//	A.B.C[1]  Tx  V (nested) DV (default) Ff 2, no widget
//	name      Tx  V (old) DV "Hié" TU (Your name), widgets on page 1 and page 2
//	agree     Btn V /Off, widget on page 1
//	count     Tx  V 3, no widget
//	anon      Ch  V /Opt1, parent has no partial name
//
// Page 1 also carries a widget named "orphan" that has no field.
func SplitWidgetForm(layout Layout) []byte {
	return NewBuilder(1).
		Add(1, "<< /Type /Catalog /Pages 2 0 R /AcroForm 5 0 R >>").
		Add(2, "<< /Type /Pages /Kids [3 0 R 4 0 R] /Count 2 >>").
		Add(3, "<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Annots [12 0 R 13 0 R 15 0 R] >>").
		Add(4, "<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Annots [14 0 R] >>").
		Add(5, "<< /Fields [6 0 R 9 0 R 10 0 R 11 0 R 16 0 R] >>").
		Add(6, "<< /T (A) /Kids [7 0 R] >>").
		Add(7, "<< /T (B) /Parent 6 0 R /Kids [8 0 R] >>").
		Add(8, "<< /T (C[1]) /FT /Tx /Parent 7 0 R /V (nested) /DV (default) /Ff 2 >>").
		Add(9, "<< /T (name) /FT /Tx /V (old) /DV <FEFF0048006900E9> /TU (Your name) >>").
		Add(10, "<< /T (agree) /FT /Btn /V /Off >>").
		Add(11, "<< /T (count) /FT /Tx /V 3 >>").
		Add(12, "<< /Type /Annot /Subtype /Widget /T (name) /V (old) /P 3 0 R /Rect [100 700 300 720] >>").
		Add(13, "<< /Type /Annot /Subtype /Widget /T (agree) /V /Off /AS /Off /P 3 0 R /Rect [100 650 120 670] >>").
		Add(14, "<< /Type /Annot /Subtype /Widget /T (name) /V (old) /P 4 0 R /Rect [100 700 300 720] >>").
		Add(15, "<< /Type /Annot /Subtype /Widget /T (orphan) /V (stale) /P 3 0 R /Rect [100 600 300 620] >>").
		Add(16, "<< /Kids [17 0 R] >>").
		Add(17, "<< /T (anon) /FT /Ch /Parent 16 0 R /V /Opt1 >>").
		Build(layout)
}

// NestedForm holds three levels of containers and a typed field that itself
// has a typed kid, plus two roots sharing the qualified name "dup".
func NestedForm(layout Layout) []byte {
	return NewBuilder(1).
		Add(1, "<< /Type /Catalog /Pages 2 0 R /AcroForm 4 0 R >>").
		Add(2, "<< /Type /Pages /Kids [3 0 R] /Count 1 >>").
		Add(3, "<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] >>").
		Add(4, "<< /Fields [5 0 R 8 0 R 10 0 R 11 0 R] >>").
		Add(5, "<< /T (A) /Kids [6 0 R] >>").
		Add(6, "<< /T (B) /Parent 5 0 R /Kids [7 0 R] >>").
		Add(7, "<< /T (C[1]) /FT /Tx /Parent 6 0 R /V (deep) >>").
		Add(8, "<< /T (outer) /FT /Tx /V (o) /Kids [9 0 R] >>").
		Add(9, "<< /T (inner) /FT /Tx /Parent 8 0 R /V (i) >>").
		Add(10, "<< /T (dup) /FT /Tx /V (first) >>").
		Add(11, "<< /T (dup) /FT /Tx /V (second) >>").
		Build(layout)
}

// NoForm is a one-page document without an AcroForm dictionary
func NoForm(layout Layout) []byte {
	return NewBuilder(1).
		Add(1, "<< /Type /Catalog /Pages 2 0 R >>").
		Add(2, "<< /Type /Pages /Kids [3 0 R] /Count 1 >>").
		Add(3, "<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] >>").
		Build(layout)
}

// DanglingParentForm has a field whose Parent points at a missing object
func DanglingParentForm(layout Layout) []byte {
	return NewBuilder(1).
		Add(1, "<< /Type /Catalog /Pages 2 0 R /AcroForm 4 0 R >>").
		Add(2, "<< /Type /Pages /Kids [3 0 R] /Count 1 >>").
		Add(3, "<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] >>").
		Add(4, "<< /Fields [5 0 R] >>").
		Add(5, "<< /T (lost) /FT /Tx /Parent 40 0 R >>").
		Build(layout)
}

// CyclicKidsForm has two containers listing each other as kids
func CyclicKidsForm(layout Layout) []byte {
	return NewBuilder(1).
		Add(1, "<< /Type /Catalog /Pages 2 0 R /AcroForm 4 0 R >>").
		Add(2, "<< /Type /Pages /Kids [3 0 R] /Count 1 >>").
		Add(3, "<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] >>").
		Add(4, "<< /Fields [5 0 R] >>").
		Add(5, "<< /T (loop) /Kids [6 0 R] >>").
		Add(6, "<< /T (back) /Parent 5 0 R /Kids [5 0 R] >>").
		Build(layout)
}
