// Package config holds process-wide tunables shared across the engine,
// set once at startup via functional options (the corpus's preferred
// pattern at this scale, e.g. gitrgoliveira-vault-file-encryption,
// kenchrcum-s3-encryption-gateway) rather than go-mega's mutator-method
// config struct.
package config

import (
	"time"

	"github.com/sirupsen/logrus"
)

const (
	DefaultAPIBase    = "https://gateway.filen.io"
	DefaultIngestBase = "https://ingest.filen.io"
	DefaultEgestBase  = "https://egest.filen.io"

	DefaultChunkSize       = 1 << 20 // 1 MiB
	DefaultChunkTimeout    = 30 * time.Second
	DefaultHTTPTimeout     = 60 * time.Second
	DefaultRetries         = 3
	DefaultListingCacheTTL = 10 * time.Minute
)

// Options is the set of tunables shared by transport, batch, and cache.
type Options struct {
	APIBase    string
	IngestBase string
	EgestBase  string

	ChunkSize       int
	ChunkTimeout    time.Duration
	HTTPTimeout     time.Duration
	Retries         int
	ListingCacheTTL time.Duration

	Logger logrus.FieldLogger
}

// Option mutates an Options under construction.
type Option func(*Options)

// Default returns the baseline Options every command starts from.
func Default() *Options {
	return &Options{
		APIBase:         DefaultAPIBase,
		IngestBase:      DefaultIngestBase,
		EgestBase:       DefaultEgestBase,
		ChunkSize:       DefaultChunkSize,
		ChunkTimeout:    DefaultChunkTimeout,
		HTTPTimeout:     DefaultHTTPTimeout,
		Retries:         DefaultRetries,
		ListingCacheTTL: DefaultListingCacheTTL,
		Logger:          logrus.StandardLogger(),
	}
}

// New builds Options from Default() with opts applied in order.
func New(opts ...Option) *Options {
	o := Default()
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func WithAPIBase(base string) Option    { return func(o *Options) { o.APIBase = base } }
func WithIngestBase(base string) Option { return func(o *Options) { o.IngestBase = base } }
func WithEgestBase(base string) Option  { return func(o *Options) { o.EgestBase = base } }
func WithRetries(n int) Option          { return func(o *Options) { o.Retries = n } }
func WithChunkTimeout(d time.Duration) Option {
	return func(o *Options) { o.ChunkTimeout = d }
}
func WithLogger(l logrus.FieldLogger) Option { return func(o *Options) { o.Logger = l } }
