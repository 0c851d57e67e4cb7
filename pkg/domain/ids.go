package domain

// Typed identifiers keep aggregates from different contexts apart at compile
// time. Authors and readers share the value of the user they were created from.
type (
	UserID         string
	AuthorID       string
	ReaderID       string
	PaymentID      string
	NotificationID string
)

func (id UserID) String() string         { return string(id) }
func (id AuthorID) String() string       { return string(id) }
func (id ReaderID) String() string       { return string(id) }
func (id PaymentID) String() string      { return string(id) }
func (id NotificationID) String() string { return string(id) }

// IsNil reports whether the identifier is unset.
func (id UserID) IsNil() bool { return id == "" }
