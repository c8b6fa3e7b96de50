// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

package process

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/spf13/pflag"
)

var durationType = reflect.TypeOf(time.Duration(0))

// Bind registers a flag for every exported field of config, which must be a
// pointer to a struct.
//
// Flag names are the hyphenated lower case field names; nested structs add a
// dotted prefix and embedded structs are flattened. The `default` tag sets the default value, otherwise the
// current field value is kept. The `help` tag is the usage text and
// `hidden:"true"` hides the flag.
func Bind(flags *pflag.FlagSet, config interface{}) {
	value := reflect.ValueOf(config)
	if value.Kind() != reflect.Ptr || value.Elem().Kind() != reflect.Struct {
		panic(fmt.Sprintf("invalid config type %T, expected pointer to struct", config))
	}
	bindStruct(flags, "", value.Elem())
}

func bindStruct(flags *pflag.FlagSet, prefix string, value reflect.Value) {
	typ := value.Type()
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}

		if field.Anonymous && field.Type.Kind() == reflect.Struct {
			bindStruct(flags, prefix, value.Field(i))
			continue
		}

		name := prefix + hyphenate(field.Name)
		help := field.Tag.Get("help")
		def, hasDefault := field.Tag.Lookup("default")
		ptr := value.Field(i).Addr().Interface()

		if flagValue, ok := ptr.(pflag.Value); ok {
			if hasDefault {
				must(flagValue.Set(def))
			}
			flags.Var(flagValue, name, help)
			annotate(flags, name, field)
			continue
		}

		if field.Type == durationType {
			target := ptr.(*time.Duration)
			if hasDefault {
				parsed, err := time.ParseDuration(def)
				must(err)
				*target = parsed
			}
			flags.DurationVar(target, name, *target, help)
			annotate(flags, name, field)
			continue
		}

		switch field.Type.Kind() {
		case reflect.Struct:
			bindStruct(flags, name+".", value.Field(i))
			continue
		case reflect.String:
			target := ptr.(*string)
			if hasDefault {
				*target = def
			}
			flags.StringVar(target, name, *target, help)
		case reflect.Bool:
			target := ptr.(*bool)
			if hasDefault {
				parsed, err := strconv.ParseBool(def)
				must(err)
				*target = parsed
			}
			flags.BoolVar(target, name, *target, help)
		case reflect.Int:
			target := ptr.(*int)
			if hasDefault {
				parsed, err := strconv.Atoi(def)
				must(err)
				*target = parsed
			}
			flags.IntVar(target, name, *target, help)
		case reflect.Int64:
			target := ptr.(*int64)
			if hasDefault {
				parsed, err := strconv.ParseInt(def, 0, 64)
				must(err)
				*target = parsed
			}
			flags.Int64Var(target, name, *target, help)
		case reflect.Uint64:
			target := ptr.(*uint64)
			if hasDefault {
				parsed, err := strconv.ParseUint(def, 0, 64)
				must(err)
				*target = parsed
			}
			flags.Uint64Var(target, name, *target, help)
		case reflect.Float64:
			target := ptr.(*float64)
			if hasDefault {
				parsed, err := strconv.ParseFloat(def, 64)
				must(err)
				*target = parsed
			}
			flags.Float64Var(target, name, *target, help)
		default:
			panic(fmt.Sprintf("invalid field type %s for %q", field.Type, name))
		}
		annotate(flags, name, field)
	}
}

func annotate(flags *pflag.FlagSet, name string, field reflect.StructField) {
	if field.Tag.Get("hidden") == "true" {
		must(flags.MarkHidden(name))
	}
	if field.Tag.Get("user") == "true" {
		must(flags.SetAnnotation(name, "user", []string{"true"}))
	}
}

// hyphenate converts a Go field name to a flag name, e.g. MaxTTL to max-ttl.
func hyphenate(name string) string {
	runes := []rune(name)
	var b strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) && i > 0 {
			prevLower := unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1])
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if prevLower || (nextLower && unicode.IsUpper(runes[i-1])) {
				b.WriteByte('-')
			}
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
