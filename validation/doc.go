// Package validation checks decoded configuration sections against struct
// tags using go-playground/validator.
//
//	type ServerConfig struct {
//	    Port int `mapstructure:"port" validate:"gte=0,lte=65535"`
//	}
//	err := validation.Validate(cfg)
//
// Field names in messages come from the mapstructure tag so they match the
// keys a user wrote in the config file.
package validation
