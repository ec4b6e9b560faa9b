package dicom

// Dataset is an ordered collection of DICOM elements, preserving the order
// they appeared in on disk. Sequence items are themselves Datasets.
type Dataset struct {
	Elements []*Element

	// undefinedLength records, for a dataset that is a sequence item, the
	// length form it was read with so write-back keeps the original framing
	undefinedLength bool
}

// NewDataset creates an empty dataset
func NewDataset() *Dataset {
	return &Dataset{}
}

// Find returns the element with the given tag, searching this dataset only
// (not sequence items)
func (ds *Dataset) Find(t Tag) (*Element, bool) {
	for _, e := range ds.Elements {
		if e.Tag.Equals(t) {
			return e, true
		}
	}
	return nil, false
}

// Add appends an element to the dataset
func (ds *Dataset) Add(elems ...*Element) {
	ds.Elements = append(ds.Elements, elems...)
}

// Remove deletes the element with the given tag from this dataset.
// Removing an absent tag is a no-op.
func (ds *Dataset) Remove(t Tag) bool {
	return ds.removeIf(func(e *Element) bool { return e.Tag == t })
}

// Walk visits every element in the dataset, descending depth-first into
// sequence items, calling fn with the element's containing dataset. Each
// element is visited exactly once.
func (ds *Dataset) Walk(fn func(parent *Dataset, e *Element)) {
	for _, e := range ds.Elements {
		fn(ds, e)
		if e.IsSequence() {
			for _, item := range e.Items {
				item.Walk(fn)
			}
		}
	}
}

// RemoveIf deletes every element matching the predicate, in place,
// including elements nested inside sequence items at arbitrary depth.
// A matching sequence element is removed whole; survivors are descended
// into. Siblings of a deleted element are neither skipped nor revisited.
func (ds *Dataset) RemoveIf(match func(e *Element) bool) {
	ds.removeIf(match)
}

func (ds *Dataset) removeIf(match func(e *Element) bool) bool {
	removed := false
	kept := ds.Elements[:0]
	for _, e := range ds.Elements {
		if match(e) {
			removed = true
			continue
		}
		if e.IsSequence() {
			for _, item := range e.Items {
				if item.removeIf(match) {
					removed = true
				}
			}
		}
		kept = append(kept, e)
	}
	ds.Elements = kept
	return removed
}

// RemovePrivateTags strips every element with an odd group number,
// including those nested inside sequence items
func (ds *Dataset) RemovePrivateTags() {
	ds.RemoveIf(func(e *Element) bool { return e.Tag.IsPrivate() })
}
