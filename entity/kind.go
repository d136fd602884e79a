package entity

import "fmt"

// Kind tells plain entities from rigidbody entities.
type Kind uint8

const (
	KindPlain Kind = iota
	KindRigidbody
)

func (k Kind) String() string {
	switch k {
	case KindPlain:
		return "plain"
	case KindRigidbody:
		return "rigidbody"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}
