package types

import (
	"encoding/json"
	"fmt"
)

// Kind обозначает источник, из которого получена точка.
type Kind string

const (
	KindLog     Kind = "log"
	KindHistory Kind = "history"
	KindCurrent Kind = "current"
)

var kindSet = map[Kind]struct{}{
	KindLog:     {},
	KindHistory: {},
	KindCurrent: {},
}

func (k Kind) IsValid() bool {
	_, ok := kindSet[k]
	return ok
}

func ParseKind(s string) (Kind, error) {
	v := Kind(s)
	if !v.IsValid() {
		return "", fmt.Errorf("недопустимый тип точки: %q", s)
	}
	return v, nil
}

func (k *Kind) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	v, err := ParseKind(s)
	if err != nil {
		return err
	}
	*k = v
	return nil
}

func (k Kind) MarshalJSON() ([]byte, error) {
	if !k.IsValid() {
		return nil, fmt.Errorf("недопустимый тип точки: %q", string(k))
	}
	return json.Marshal(string(k))
}
