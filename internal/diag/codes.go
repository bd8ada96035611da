package diag

import "fmt"

// Code identifies the class of a diagnostic.
type Code uint16

const (
	UnknownCode Code = 0

	// Extraction
	ExtractFailed Code = 1001

	// Fragment parsing
	UnknownKind        Code = 2001
	MalformedFragment  Code = 2002
	NonCanonicalShape  Code = 2003
	MissingOperationID Code = 2004

	// Merging
	DuplicateIdentity  Code = 3001
	RedefinedSingleton Code = 3002
	DuplicateResponse  Code = 3003
)

var codeNames = map[Code]string{
	UnknownCode:        "Unknown",
	ExtractFailed:      "ExtractFailed",
	UnknownKind:        "UnknownKind",
	MalformedFragment:  "MalformedFragment",
	NonCanonicalShape:  "NonCanonicalShape",
	MissingOperationID: "MissingOperationID",
	DuplicateIdentity:  "DuplicateIdentity",
	RedefinedSingleton: "RedefinedSingleton",
	DuplicateResponse:  "DuplicateResponse",
}

func (c Code) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Code(%d)", uint16(c))
}

// ID is the short stable form used in terminal output, e.g. "APD3001".
func (c Code) ID() string {
	return fmt.Sprintf("APD%04d", uint16(c))
}

func (c Code) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}
