package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"gopkg.in/yaml.v3"
)

// Config is the declarative form of the client options, for loading from
// a file:
//
//	timeout: 30s
//	dial_timeout: 5s
//	user_agent: myapp/1.0
//	request_id: true
//	decompression: true
//	throttle:
//	  rps: 10
//	  burst: 5
type Config struct {
	Timeout       time.Duration   `yaml:"timeout" validate:"gte=0"`
	DialTimeout   time.Duration   `yaml:"dial_timeout" validate:"gte=0"`
	UserAgent     string          `yaml:"user_agent" validate:"omitempty,printascii,max=256"`
	RequestID     bool            `yaml:"request_id"`
	Decompression bool            `yaml:"decompression"`
	Throttle      *ThrottleConfig `yaml:"throttle"`
}

// ThrottleConfig enables rate limiting.
type ThrottleConfig struct {
	RPS   int `yaml:"rps" validate:"required,gt=0"`
	Burst int `yaml:"burst" validate:"required,gt=0"`
}

// LoadConfig decodes and validates a YAML Config. Unknown fields are
// rejected.
func LoadConfig(r io.Reader) (Config, error) {
	var cfg Config

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks cfg against its declared tags. Failures are returned
// as FieldErrors.
func (cfg Config) Validate() error {
	return validateStruct(cfg)
}

// WithConfig applies a validated Config. Options given after it override
// its values.
func WithConfig(cfg Config) Option {
	return func(c *options) error {
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}

		if cfg.Timeout > 0 {
			c.timeout = &cfg.Timeout
		}
		if cfg.DialTimeout > 0 {
			c.dialTimeout = &cfg.DialTimeout
		}
		if cfg.UserAgent != "" {
			c.userAgent = cfg.UserAgent
		}
		c.requestID = c.requestID || cfg.RequestID
		c.decompress = c.decompress || cfg.Decompression
		if cfg.Throttle != nil {
			return WithThrottle(cfg.Throttle.RPS, cfg.Throttle.Burst)(c)
		}

		return nil
	}
}

var validate *validator.Validate
var translator ut.Translator

func init() {
	validate = validator.New()
	translator, _ = ut.New(en.New(), en.New()).GetTranslator("en")
	err := en_translations.RegisterDefaultTranslations(validate, translator)
	if err != nil {
		panic(err)
	}
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}

		return name
	})
}

func validateStruct(val any) error {
	if err := validate.Struct(val); err != nil {
		var verrors validator.ValidationErrors
		if !errors.As(err, &verrors) {
			return err
		}

		var fields FieldErrors
		for _, verror := range verrors {
			fields = append(fields, FieldError{
				Field: strings.TrimPrefix(verror.Namespace(), "Config."),
				Err:   customErrForTag(verror.Tag(), verror),
			})
		}
		return fields
	}

	return nil
}

// FieldError is one failed Config check.
type FieldError struct {
	Field string `json:"field"`
	Err   string `json:"error"`
}

// FieldErrors represents a collection of field errors.
type FieldErrors []FieldError

// Error implements the error interface.
func (fe FieldErrors) Error() string {
	d, err := json.Marshal(fe)
	if err != nil {
		return err.Error()
	}
	return string(d)
}

func customErrForTag(tag string, verror validator.FieldError) string {
	switch tag {
	case "required":
		return "This field is required"
	default:
		return verror.Translate(translator)
	}
}
