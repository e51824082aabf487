package domain

type Clientele string

const (
	ClienteleMale   Clientele = "male"
	ClienteleFemale Clientele = "female"
	ClienteleUnisex Clientele = "unisex"
)

func ParseClientele(s string) (Clientele, bool) {
	switch Clientele(s) {
	case ClienteleMale, ClienteleFemale, ClienteleUnisex:
		return Clientele(s), true
	default:
		return "", false
	}
}

// Service is a bookable offering keyed by target clientele and three
// capability flags. At least one flag is true on every row; no two rows
// share the same (clientele, washing, cutting, coloring) combination.
type Service struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Clientele Clientele `json:"clientele"`
	Washing   bool      `json:"washing"`
	Cutting   bool      `json:"cutting"`
	Coloring  bool      `json:"coloring"`
	Price     float64   `json:"price"`
}

// Covers reports whether the service offers everything the caller asked for.
// The service may offer more than asked, never less.
func (s *Service) Covers(cut, wash, color bool) bool {
	if cut && !s.Cutting {
		return false
	}
	if wash && !s.Washing {
		return false
	}
	if color && !s.Coloring {
		return false
	}
	return true
}

// FlagCount is the number of capabilities the service offers.
func (s *Service) FlagCount() int {
	n := 0
	if s.Cutting {
		n++
	}
	if s.Washing {
		n++
	}
	if s.Coloring {
		n++
	}
	return n
}
