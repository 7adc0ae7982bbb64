package api

import (
	"reflect"

	"github.com/rs/zerolog/log"
)

const mask = "******"

// Scrub blanks every field tagged sensitive in the struct o points to.
// Sensitive struct fields, such as a config.StringConfig, have all of their
// own fields blanked.
func Scrub(o interface{}) {
	v := reflect.ValueOf(o).Elem()
	t := reflect.TypeOf(o).Elem()
	if v.Kind() != reflect.Struct {
		return
	}

	for i := 0; i < t.NumField(); i++ {
		f := v.Field(i)
		sf := t.Field(i)
		if !f.CanSet() {
			continue
		}
		if sf.Tag.Get("sensitive") != "" {
			blank(sf.Name, f)
			continue
		}
		if f.Kind() == reflect.Struct {
			Scrub(f.Addr().Interface())
		}
	}
}

func blank(name string, f reflect.Value) {
	switch f.Kind() {
	case reflect.String:
		if f.String() != "" {
			f.SetString(mask)
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		f.SetInt(0)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		f.SetUint(0)
	case reflect.Float32, reflect.Float64:
		f.SetFloat(0.00)
	case reflect.Bool:
		f.SetBool(false)
	case reflect.Struct:
		for i := 0; i < f.NumField(); i++ {
			if f.Field(i).CanSet() {
				blank(f.Type().Field(i).Name, f.Field(i))
			}
		}
	default:
		log.Warn().
			Str("fieldName", name).
			Str("type", f.Kind().String()).
			Msg("field marked sensitive but was an unrecognized type")
	}
}
