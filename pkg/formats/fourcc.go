package formats

// FourCC is a four character format code.
type FourCC [4]byte

var FourCCYUY2 = FourCC{'Y', 'U', 'Y', '2'}

func (c FourCC) String() string {
	b := c
	for i, ch := range b {
		if ch < 0x20 || ch > 0x7e {
			b[i] = '.'
		}
	}
	return string(b[:])
}
