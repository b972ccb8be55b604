package params

const (
	SecParam = 256
	SecBytes = SecParam / 8

	// BytesScalar is the size of a big-endian encoded secp256k1 scalar.
	BytesScalar = 32
	// BytesPoint is the size of a compressed secp256k1 point.
	BytesPoint = 33

	// BytesDigest is the size of the digests identifying boxes, transactions and tokens.
	BytesDigest = 32

	// BytesChallenge is the size of an encoded sigma protocol challenge.
	//
	// Challenges live in the scalar field, so they share the scalar encoding.
	BytesChallenge = BytesScalar

	// MnemonicIterations is the PBKDF2 iteration count used to stretch a mnemonic into a seed.
	MnemonicIterations = 2048
	// BytesSeed is the size of the seed derived from a mnemonic.
	BytesSeed = 64
)
