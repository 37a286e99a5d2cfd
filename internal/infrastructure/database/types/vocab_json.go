package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/kamusiapp/kamusi/internal/entity"
)

// MeaningColumn stores an optional entity.Meaning as a JSON text column.
type MeaningColumn struct {
	Meaning *entity.Meaning
}

// Scan implements sql.Scanner
func (c *MeaningColumn) Scan(src any) error {
	data, err := jsonBytes("MeaningColumn", src)
	if err != nil {
		return err
	}
	if data == nil {
		c.Meaning = nil
		return nil
	}
	var m entity.Meaning
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	c.Meaning = &m
	return nil
}

// Value implements driver.Valuer
func (c MeaningColumn) Value() (driver.Value, error) {
	if c.Meaning == nil {
		return nil, nil
	}
	return json.Marshal(c.Meaning)
}

// ExampleColumn stores an optional entity.ExampleSentence as JSON text.
type ExampleColumn struct {
	Example *entity.ExampleSentence
}

// Scan implements sql.Scanner
func (c *ExampleColumn) Scan(src any) error {
	data, err := jsonBytes("ExampleColumn", src)
	if err != nil {
		return err
	}
	if data == nil {
		c.Example = nil
		return nil
	}
	var e entity.ExampleSentence
	if err := json.Unmarshal(data, &e); err != nil {
		return err
	}
	c.Example = &e
	return nil
}

// Value implements driver.Valuer
func (c ExampleColumn) Value() (driver.Value, error) {
	if c.Example == nil {
		return nil, nil
	}
	return json.Marshal(c.Example)
}

func jsonBytes(kind string, src any) ([]byte, error) {
	if src == nil {
		return nil, nil
	}
	switch data := src.(type) {
	case []byte:
		if len(data) == 0 {
			return nil, nil
		}
		return data, nil
	case string:
		if data == "" {
			return nil, nil
		}
		return []byte(data), nil
	default:
		return nil, fmt.Errorf("%s: unsupported src type %T", kind, src)
	}
}
