package pdfsig

// HasDSS scans every object in the PDF's cross-reference table for a
// dictionary whose /Type name equals DSS, per §4.4 step 8. This Non-goal
// boundary stops at detection: the DSS contents (embedded CRLs/OCSPs) are
// never mined here — full LTV reconstruction is explicitly out of scope.
func (d *Document) HasDSS() bool {
	for _, x := range d.reader.Xref() {
		v := d.reader.Resolve(x.Ptr(), x.Ptr())
		if v.Key("Type").Name() == "DSS" {
			return true
		}
	}
	return false
}
