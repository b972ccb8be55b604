package secret

// Store is an insertion ordered, append only collection of secrets.
//
// A Store is not safe for concurrent mutation.
type Store struct {
	secrets []Secret
}

// NewStore returns a store holding secrets, in order.
func NewStore(secrets ...Secret) *Store {
	s := &Store{}
	for _, secret := range secrets {
		s.Add(secret)
	}
	return s
}

// Add appends secret to the store. Nil secrets, including typed nil pointers
// and zero values of the concrete types, are ignored.
func (s *Store) Add(secret Secret) {
	if empty(secret) {
		return
	}
	s.secrets = append(s.secrets, secret)
}

func empty(secret Secret) bool {
	switch t := secret.(type) {
	case nil:
		return true
	case *DlogSecret:
		return t == nil || t.x == nil
	case *DHTupleSecret:
		return t == nil || t.x == nil
	}
	return false
}

// Secrets returns the secrets in insertion order.
func (s *Store) Secrets() []Secret {
	return append([]Secret(nil), s.secrets...)
}

// Len returns the number of secrets.
func (s *Store) Len() int {
	return len(s.secrets)
}

// Index maps the key of every image to its secret. When two secrets share an
// image, the first one inserted is kept.
func (s *Store) Index() map[string]Secret {
	index := make(map[string]Secret, len(s.secrets))
	for _, secret := range s.secrets {
		key := secret.Image().Key()
		if _, ok := index[key]; !ok {
			index[key] = secret
		}
	}
	return index
}
