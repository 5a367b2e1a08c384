package embedding

// PadToken is the synthetic padding token appended to the pretrained
// vocabulary. Its embedding row is all zeros.
const PadToken = "<NULL>"

// Vocab maps tokens to integer ids and back. Ids index rows of the embedding
// Table; the padding token is always the last id.
type Vocab struct {
	tokenToID map[string]int
	idToToken []string
	padID     int
}

// Lookup returns the id for the given token. Tokens outside the pretrained
// vocabulary map to the padding id, whose embedding row is zero.
func (v *Vocab) Lookup(token string) int {
	if id, ok := v.tokenToID[token]; ok {
		return id
	}
	return v.padID
}

// Token returns the token for the given id.
func (v *Vocab) Token(id int) string {
	return v.idToToken[id]
}

// Contains reports whether the token is in the vocabulary.
func (v *Vocab) Contains(token string) bool {
	_, ok := v.tokenToID[token]
	return ok
}

// Size returns the number of tokens, including the padding token.
func (v *Vocab) Size() int { return len(v.idToToken) }

// PadID returns the padding token's id.
func (v *Vocab) PadID() int { return v.padID }
