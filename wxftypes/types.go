package wxftypes

// BinData marks a byte slice that should be encoded as a single Binary token. A plain
// []byte is an ordered sequence and encodes as a List of integers.
type BinData []byte
