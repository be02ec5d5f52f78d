package display

// SetRow selects row as the target of subsequent writes and empties it.
// If row is out of range, ErrOutOfRange is returned and writes are
// rejected until a valid row is selected.
func (d *Display) SetRow(row int) error {
	if row < 0 || row >= MaxCharacterRows {
		d.hotRow = noRow
		d.hotCol = 0
		return ErrOutOfRange
	}
	d.hotRow = row
	d.hotCol = 0
	d.buf[row][0] = 0
	return nil
}

// WriteByte appends c to the selected row. ErrOutOfRange is returned if
// no valid row is selected or the row is full. NUL bytes are dropped.
func (d *Display) WriteByte(c byte) error {
	if d.hotRow == noRow || d.hotCol >= MaxCharacterCols {
		return ErrOutOfRange
	}
	if c == 0 {
		return nil
	}
	row := &d.buf[d.hotRow]
	row[d.hotCol] = c
	d.hotCol++
	row[d.hotCol] = 0
	return nil
}

// Write appends p to the selected row. It stops at the first byte that
// does not fit and returns the number of bytes consumed.
func (d *Display) Write(p []byte) (int, error) {
	for i, c := range p {
		if err := d.WriteByte(c); err != nil {
			return i, err
		}
	}
	return len(p), nil
}

// WriteString is like Write but takes a string.
func (d *Display) WriteString(s string) (int, error) {
	for i := 0; i < len(s); i++ {
		if err := d.WriteByte(s[i]); err != nil {
			return i, err
		}
	}
	return len(s), nil
}

// Print replaces the contents of row with text. Text beyond the row
// capacity is truncated and ErrOutOfRange returned.
func (d *Display) Print(row int, text []byte) error {
	if err := d.SetRow(row); err != nil {
		return err
	}
	_, err := d.Write(text)
	return err
}

// AppendRow appends the contents of logical row i to dst. Out of range
// rows append nothing.
func (d *Display) AppendRow(dst []byte, i int) []byte {
	if i < 0 || i >= MaxCharacterRows {
		return dst
	}
	row := &d.buf[i]
	for _, c := range row {
		if c == 0 {
			break
		}
		dst = append(dst, c)
	}
	return dst
}

// Row returns the contents of logical row i.
func (d *Display) Row(i int) string {
	var b [MaxCharacterCols]byte
	return string(d.AppendRow(b[:0], i))
}

func (d *Display) blank(row int) bool {
	return d.buf[row][0] == 0
}

func (d *Display) nonBlankRows() int {
	n := 0
	for row := range d.buf {
		if !d.blank(row) {
			n++
		}
	}
	return n
}
