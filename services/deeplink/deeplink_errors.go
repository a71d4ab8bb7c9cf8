package deeplink

// Category buckets a rejection for presentation: the api layer maps parse
// and validation onto 400s, auth onto 401, collaborator onto 502.
type Category string

const (
	CategoryParse        Category = "parse"
	CategoryValidation   Category = "validation"
	CategoryAuth         Category = "auth"
	CategoryCollaborator Category = "collaborator"
)

// Rejection is the terminal outcome for a link that cannot be dispatched.
// Reason is safe to show the user; the wrapped cause is for logs only and
// never reaches the response body.
type Rejection struct {
	Category Category `json:"category"`
	Reason   string   `json:"reason"`
	cause    error
}

func (r *Rejection) Error() string {
	return r.Reason
}

func (r *Rejection) Unwrap() error {
	return r.cause
}

func NewRejection(category Category, reason string) *Rejection {
	return &Rejection{Category: category, Reason: reason}
}

func newCollaboratorRejection(reason string, cause error) *Rejection {
	return &Rejection{Category: CategoryCollaborator, Reason: reason, cause: cause}
}
