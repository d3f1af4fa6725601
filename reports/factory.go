package reports

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/cleverty/endpoint-provisioner/interfaces"
)

// NewSinkFor creates a report sink from a location URI.
//
// Supported schemes:
//   - file:// - local directory
//   - s3:// - Amazon S3 or compatible object storage
func NewSinkFor(locationURI string, log *slog.Logger) (interfaces.ReportSink, error) {
	u, err := url.Parse(locationURI)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", interfaces.ErrInvalidLocationURI, err)
	}

	switch strings.ToLower(u.Scheme) {
	case "s3":
		return createS3Sink(u, log)
	case "file":
		return createFileSink(u, log)
	default:
		return nil, fmt.Errorf("%w: unsupported sink scheme %q", interfaces.ErrInvalidLocationURI, u.Scheme)
	}
}

// NewMultiSink creates every sink it can from the given URIs and combines them.
// URIs that fail to parse are logged and skipped.
func NewMultiSink(locationURIs []string, log *slog.Logger) (interfaces.ReportSink, error) {
	sinks := make([]interfaces.ReportSink, 0, len(locationURIs))

	for _, uri := range locationURIs {
		sink, err := NewSinkFor(uri, log)
		if err != nil {
			log.Warn("Failed to create report sink",
				"err", err,
				slog.String("locationURI", redact(uri)))
			continue
		}
		sinks = append(sinks, sink)
	}

	if len(sinks) == 0 {
		return nil, fmt.Errorf("no valid report sinks created")
	}
	if len(sinks) == 1 {
		return sinks[0], nil
	}

	return NewMulti(sinks, log), nil
}

// createS3Sink parses s3://[ACCESS_KEY:SECRET_KEY@]bucket/prefix?region=...&endpoint=...
func createS3Sink(u *url.URL, log *slog.Logger) (interfaces.ReportSink, error) {
	bucket := u.Host
	if bucket == "" {
		return nil, fmt.Errorf("%w: missing bucket in %s", interfaces.ErrInvalidLocationURI, redact(u.String()))
	}

	query := u.Query()
	region := query.Get("region")
	if region == "" {
		region = "us-east-1"
	}

	var accessKey, secretKey string
	if u.User != nil {
		accessKey = u.User.Username()
		secretKey, _ = u.User.Password()
	}

	return NewS3Sink(S3Options{
		Bucket:    bucket,
		Prefix:    strings.TrimPrefix(u.Path, "/"),
		Region:    region,
		Endpoint:  query.Get("endpoint"),
		PathStyle: query.Get("path_style") == "true",
		AccessKey: accessKey,
		SecretKey: secretKey,
	}, log)
}

// createFileSink accepts file:///absolute/path or file://./relative/path.
func createFileSink(u *url.URL, log *slog.Logger) (interfaces.ReportSink, error) {
	path := u.Path
	if u.Host != "" {
		path = u.Host + "/" + strings.TrimPrefix(path, "/")
	}
	if path == "" {
		return nil, fmt.Errorf("%w: empty path in %s", interfaces.ErrInvalidLocationURI, u.String())
	}

	return NewFileSink(path, log)
}

// redact hides user info so credentials never reach the logs.
func redact(uri string) string {
	u, err := url.Parse(uri)
	if err != nil || u.User == nil {
		return uri
	}
	return u.Redacted()
}
