package schema

import (
	"context"
	"errors"
	"fmt"

	"github.com/hamba/avro/v2"
	"github.com/twmb/franz-go/pkg/sr"
)

var (
	ErrTooFewOpts         = errors.New("too few options")
	ErrEmptySubject       = errors.New("registry subject is empty")
	ErrNoSchemaIdentifier = errors.New("schema identifier is nil")
	ErrNotSearchEvent     = errors.New("value is not a search event")
)

type Serde interface {
	Encode(v any) ([]byte, error)
	Decode(data []byte, v any) error
}

var _ Serde = (*searchEventSerde)(nil)

// searchEventSerde frames SearchEventV1 records with the registry header:
// magic byte, 4-byte schema id, Avro body.
type searchEventSerde struct {
	avroSchema avro.Schema
	srSerde    *sr.Serde
}

func (s searchEventSerde) Encode(v any) ([]byte, error) {
	switch e := v.(type) {
	case SearchEventV1:
		return s.srSerde.Encode(e)
	case *SearchEventV1:
		if e == nil {
			return nil, ErrNotSearchEvent
		}
		return s.srSerde.Encode(*e)
	}
	return nil, fmt.Errorf("%w: %T", ErrNotSearchEvent, v)
}

func (s searchEventSerde) Decode(data []byte, v any) error {
	if _, ok := v.(*SearchEventV1); !ok {
		return fmt.Errorf("%w: %T", ErrNotSearchEvent, v)
	}
	return s.srSerde.Decode(data, v)
}

type Opt func(*serdeOpts) error

type serdeOpts struct {
	subject string
	si      SchemaIdentifier
}

func SubjectOpt(subject string) Opt {
	return func(so *serdeOpts) error {
		if subject == "" {
			return ErrEmptySubject
		}
		so.subject = subject
		return nil
	}
}

func SchemaIdentifierOpt(si SchemaIdentifier) Opt {
	return func(so *serdeOpts) error {
		if si == nil {
			return ErrNoSchemaIdentifier
		}
		so.si = si
		return nil
	}
}

// NewSerdeSearchEventV1 registers the search event schema under the subject
// and returns a serde bound to the resulting schema id. Both the subject and
// the schema identifier options are required.
func NewSerdeSearchEventV1(ctx context.Context, opts ...Opt) (Serde, error) {
	const op = "NewSerdeSearchEventV1"

	var so serdeOpts
	for _, o := range opts {
		if err := o(&so); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}
	if so.subject == "" || so.si == nil {
		return nil, fmt.Errorf("%s: %w", op, ErrTooFewOpts)
	}

	id, err := so.si.DetermineID(ctx, so.subject, SearchEventSchemaTextV1)
	if err != nil {
		return nil, fmt.Errorf("%s: subject %q: %w", op, so.subject, err)
	}

	s := searchEventSerde{
		avroSchema: SearchEventV1Avro(),
		srSerde:    new(sr.Serde),
	}
	s.srSerde.Register(
		id,
		SearchEventV1{},
		sr.EncodeFn(func(v any) ([]byte, error) {
			return avro.Marshal(s.avroSchema, v)
		}),
		sr.DecodeFn(func(data []byte, v any) error {
			return avro.Unmarshal(s.avroSchema, data, v)
		}),
	)
	return s, nil
}
