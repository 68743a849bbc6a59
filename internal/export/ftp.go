package export

import (
	"context"
	"net"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/jlaffaye/ftp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/roster-cli/internal/resilience"
)

// FTPOptions configures the mail-house upload.
type FTPOptions struct {
	URL      string
	Username string
	Password string
	Timeout  time.Duration
	Retry    resilience.RetryConfig
}

// FTPUploader stores exported list files on the mail-house FTP server.
type FTPUploader struct {
	opts FTPOptions
}

// NewFTPUploader creates an FTPUploader with the given options.
func NewFTPUploader(opts FTPOptions) *FTPUploader {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.Username == "" {
		opts.Username = "anonymous"
	}
	return &FTPUploader{opts: opts}
}

// parseFTPURL extracts host (with port) and the target directory from an
// FTP URL. An empty path means the login directory.
func parseFTPURL(rawURL string) (host string, dir string, err error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", "", eris.Wrap(err, "export: parse ftp url")
	}
	if u.Scheme != "ftp" {
		return "", "", eris.Errorf("export: expected ftp scheme, got %q", u.Scheme)
	}
	if u.Host == "" {
		return "", "", eris.New("export: empty host in ftp url")
	}

	host = u.Host
	if _, _, splitErr := net.SplitHostPort(host); splitErr != nil {
		host = net.JoinHostPort(host, "21")
	}

	dir = u.Path
	if dir == "" {
		dir = "/"
	}
	return host, dir, nil
}

// Upload stores every file under the URL's directory, keeping base names.
func (u *FTPUploader) Upload(ctx context.Context, files []string) error {
	if len(files) == 0 {
		return nil
	}

	host, dir, err := parseFTPURL(u.opts.URL)
	if err != nil {
		return err
	}

	retry := u.opts.Retry
	retry.OnRetry = resilience.RetryLogger("ftp", "dial")
	conn, err := resilience.DoVal(ctx, retry, func(ctx context.Context) (*ftp.ServerConn, error) {
		zap.L().Debug("ftp: connecting", zap.String("host", host))
		c, err := ftp.Dial(host, ftp.DialWithTimeout(u.opts.Timeout), ftp.DialWithContext(ctx))
		if err != nil {
			return nil, eris.Wrap(err, "export: ftp dial")
		}
		return c, nil
	})
	if err != nil {
		return err
	}
	defer func() { _ = conn.Quit() }()

	if err := conn.Login(u.opts.Username, u.opts.Password); err != nil {
		return eris.Wrap(err, "export: ftp login")
	}

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return eris.Wrap(err, "export: ftp upload cancelled")
		}
		if err := storeFile(conn, f, path.Join(dir, filepath.Base(f))); err != nil {
			return err
		}
	}

	zap.L().Info("export: ftp upload complete", zap.String("host", host), zap.String("dir", dir), zap.Int("files", len(files)))
	return nil
}

func storeFile(conn *ftp.ServerConn, local, remote string) error {
	file, err := os.Open(local)
	if err != nil {
		return eris.Wrapf(err, "export: open %s", local)
	}
	defer file.Close() //nolint:errcheck

	if err := conn.Stor(remote, file); err != nil {
		return eris.Wrapf(err, "export: ftp store %s", remote)
	}
	return nil
}
