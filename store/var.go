package store

import (
	"fmt"

	bolt "go.etcd.io/bbolt"
	"gopkg.in/yaml.v3"

	"github.com/zephyrtronium/calcscript"
)

func init() {
	initDB["initialize variable table"] = func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketVar))
		return err
	}
}

// record is the stored form of a value.
type record struct {
	Kind string   `yaml:"kind"`
	Re   float64  `yaml:"re,omitempty"`
	Im   float64  `yaml:"im,omitempty"`
	Name string   `yaml:"name,omitempty"`
	Vars []record `yaml:"vars,omitempty,flow"`
}

func toRecord(v calcscript.Val) record {
	r := record{Kind: v.Kind.String(), Re: v.Re, Im: v.Im, Name: v.Name}
	for _, e := range v.Vars {
		r.Vars = append(r.Vars, toRecord(e))
	}
	return r
}

func fromRecord(r record) (calcscript.Val, error) {
	switch r.Kind {
	case calcscript.KindReal.String():
		return calcscript.RealVal(r.Re), nil
	case calcscript.KindComplex.String():
		return calcscript.ComplexVal(r.Re, r.Im), nil
	case calcscript.KindFunc.String():
		return calcscript.FuncVal(r.Name), nil
	case calcscript.KindVars.String():
		vs := make([]calcscript.Val, len(r.Vars))
		for i, e := range r.Vars {
			v, err := fromRecord(e)
			if err != nil {
				return calcscript.Val{}, err
			}
			vs[i] = v
		}
		return calcscript.VarsVal(vs...), nil
	default:
		return calcscript.Val{}, fmt.Errorf("unknown value kind %q", r.Kind)
	}
}

func marshalVal(v calcscript.Val) ([]byte, error) {
	return yaml.Marshal(toRecord(v))
}

func unmarshalVal(b []byte) (calcscript.Val, error) {
	var r record
	if err := yaml.Unmarshal(b, &r); err != nil {
		return calcscript.Val{}, err
	}
	return fromRecord(r)
}

// SetVar stores a variable.
func (s *dbStore) SetVar(name string, v calcscript.Val) error {
	b, err := marshalVal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", name, err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketVar)).Put([]byte(name), b)
	})
}

// Var returns a stored variable.
func (s *dbStore) Var(name string) (calcscript.Val, error) {
	var v calcscript.Val
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketVar)).Get([]byte(name))
		if b == nil {
			return ErrNoVar
		}
		var err error
		v, err = unmarshalVal(b)
		if err != nil {
			return fmt.Errorf("decoding %s: %w", name, err)
		}
		return nil
	})
	return v, err
}

// Vars returns every stored variable.
func (s *dbStore) Vars() (map[string]calcscript.Val, error) {
	m := map[string]calcscript.Val{}
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketVar)).ForEach(func(k, b []byte) error {
			v, err := unmarshalVal(b)
			if err != nil {
				return fmt.Errorf("decoding %s: %w", k, err)
			}
			m[string(k)] = v
			return nil
		})
	})
	return m, err
}

// DelVar deletes a stored variable. Deleting a missing variable is not an
// error.
func (s *dbStore) DelVar(name string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketVar)).Delete([]byte(name))
	})
}
