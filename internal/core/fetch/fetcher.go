package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"unicode/utf8"

	"github.com/go-logr/logr"
	"github.com/hashicorp/go-cleanhttp"
	gocache "github.com/patrickmn/go-cache"
)

const maxRemoteSize = 32 << 20

// OCIPuller pulls a spec document from a registry reference.
type OCIPuller interface {
	Pull(ctx context.Context, reference string) ([]byte, error)
}

// Fetcher retrieves raw document text from files, URLs and OCI registries.
// A Fetcher is safe for concurrent use.
type Fetcher struct {
	cache         *Cache
	staleFallback bool
	client        *http.Client
	oci           OCIPuller
	memo          *gocache.Cache
	maxSize       int64
	log           logr.Logger
}

type Option func(*Fetcher)

func WithHTTPClient(client *http.Client) Option {
	return func(f *Fetcher) { f.client = client }
}

func WithOCIPuller(puller OCIPuller) Option {
	return func(f *Fetcher) { f.oci = puller }
}

func WithLogger(log logr.Logger) Option {
	return func(f *Fetcher) { f.log = log }
}

func New(settings CacheSettings, opts ...Option) (*Fetcher, error) {
	f := &Fetcher{
		staleFallback: settings.StaleFallback,
		client:        cleanhttp.DefaultClient(),
		memo:          gocache.New(gocache.NoExpiration, 0),
		maxSize:       maxRemoteSize,
		log:           logr.Discard(),
	}
	for _, opt := range opts {
		opt(f)
	}

	if settings.UseCache {
		maxAge := settings.MaxAge
		if maxAge == 0 {
			maxAge = DefaultMaxAge
		}
		cache, err := NewCache(settings.BaseDir, maxAge)
		if err != nil {
			return nil, err
		}
		f.cache = cache
	}
	return f, nil
}

// Cache returns the on-disk cache, or nil when caching is disabled.
func (f *Fetcher) Cache() *Cache {
	return f.cache
}

func (f *Fetcher) Fetch(ctx context.Context, source Source) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	switch source.Kind {
	case SourceFile:
		return readLocal(source.Location)
	case SourceOCI:
		return f.fetchMemoized(ctx, source, f.pullOCI)
	default:
		return f.fetchMemoized(ctx, source, f.fetchURL)
	}
}

func readLocal(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LocalReadError{Path: path, Err: err}
	}
	if !utf8.Valid(data) {
		return nil, &LocalReadError{Path: path, Err: ErrInvalidUTF8}
	}
	return data, nil
}

// fetchMemoized serves repeated reads of one location from memory. The memo
// is bypassed when caching is disabled so every read reaches the network.
func (f *Fetcher) fetchMemoized(ctx context.Context, source Source, fetch func(context.Context, string) ([]byte, error)) ([]byte, error) {
	if f.cache == nil {
		return fetch(ctx, source.Location)
	}
	if cached, ok := f.memo.Get(source.Location); ok {
		if data, ok := cached.([]byte); ok {
			return data, nil
		}
	}

	data, err := fetch(ctx, source.Location)
	if err != nil {
		return nil, err
	}
	f.memo.Set(source.Location, data, gocache.NoExpiration)
	return data, nil
}

func (f *Fetcher) pullOCI(ctx context.Context, reference string) ([]byte, error) {
	if f.oci == nil {
		return nil, &RemoteError{Location: reference, Err: ErrNoOCIClient}
	}
	data, err := f.oci.Pull(ctx, reference)
	if err != nil {
		return nil, &RemoteError{Location: reference, Err: err}
	}
	if !utf8.Valid(data) {
		return nil, &RemoteError{Location: reference, Err: ErrInvalidUTF8}
	}
	return data, nil
}

func (f *Fetcher) fetchURL(ctx context.Context, url string) ([]byte, error) {
	if f.cache == nil {
		return f.download(ctx, url)
	}

	status, entry, err := f.cache.Retrieve(url)
	if err != nil {
		return nil, err
	}
	f.log.V(1).Info("cache lookup", "url", url, "status", status.String())

	switch status {
	case Hit:
		return entry.Data, nil
	case Expired:
		data, err := f.download(ctx, url)
		if err != nil {
			if f.staleFallback && !errors.Is(err, context.Canceled) {
				f.log.Info("using stale cache entry", "severity", "warning", "url", url,
					"lastModified", entry.LastModified, "error", err.Error())
				return entry.Data, nil
			}
			return nil, err
		}
		return data, f.store(url, data)
	default:
		data, err := f.download(ctx, url)
		if err != nil {
			return nil, err
		}
		return data, f.store(url, data)
	}
}

func (f *Fetcher) store(url string, data []byte) error {
	if err := f.cache.Store(url, data); err != nil {
		return fmt.Errorf("failed to cache %s: %w", url, err)
	}
	return nil
}

func (f *Fetcher) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &RemoteError{Location: url, Err: err}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &RemoteError{Location: url, Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, &RemoteError{Location: url, StatusCode: resp.StatusCode}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxSize+1))
	if err != nil {
		return nil, &RemoteError{Location: url, Err: err}
	}
	if int64(len(data)) > f.maxSize {
		return nil, &RemoteError{Location: url, Err: fmt.Errorf("%w: limit is %d bytes", ErrTooLarge, f.maxSize)}
	}
	if !utf8.Valid(data) {
		return nil, &RemoteError{Location: url, Err: ErrInvalidUTF8}
	}
	return data, nil
}
