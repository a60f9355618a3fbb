package records

// ScanIterator walks the records selected by Manager.Scan in RID order.
type ScanIterator struct{}

// Next returns the RID and projected data of the next matching record.
//
// Not implemented in the current core.
func (it *ScanIterator) Next() (RID, []byte, error) {
	return RID{}, nil, ErrNotImplemented
}

// Close releases the iterator.
func (it *ScanIterator) Close() error {
	return nil
}
