package xhash

// Bucket state bits, two per bucket. A fresh word has every bucket empty.
const (
	flagDel   = 1
	flagEmpty = 2
	flagBoth  = 3

	allEmpty = 0xaaaaaaaa
)

func flagWords(n uint32) uint32 {
	if n < 16 {
		return 1
	}
	return n >> 4
}

func newFlags(n uint32) []uint32 {
	f := make([]uint32, flagWords(n))
	for i := range f {
		f[i] = allEmpty
	}
	return f
}

func flagShift(i uint32) uint32 { return (i & 0xf) << 1 }

func isEmpty(f []uint32, i uint32) bool  { return (f[i>>4]>>flagShift(i))&flagEmpty != 0 }
func isDel(f []uint32, i uint32) bool    { return (f[i>>4]>>flagShift(i))&flagDel != 0 }
func isEither(f []uint32, i uint32) bool { return (f[i>>4]>>flagShift(i))&flagBoth != 0 }

func setDelTrue(f []uint32, i uint32)    { f[i>>4] |= flagDel << flagShift(i) }
func setEmptyFalse(f []uint32, i uint32) { f[i>>4] &^= flagEmpty << flagShift(i) }
func setBothFalse(f []uint32, i uint32)  { f[i>>4] &^= flagBoth << flagShift(i) }
