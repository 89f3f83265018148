package export

import (
	"context"
	"net"
	"os"
	"path"
	"time"

	"github.com/jlaffaye/ftp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/stock-logistic/quoting-cli/internal/resilience"
)

// FTPConfig holds the partner FTP drop credentials.
type FTPConfig struct {
	Host     string        `mapstructure:"host" yaml:"host"`
	User     string        `mapstructure:"user" yaml:"user"`
	Password string        `mapstructure:"password" yaml:"password"`
	Dir      string        `mapstructure:"dir" yaml:"dir"`
	Timeout  time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// FTPPublisher uploads export files to the partner FTP drop.
type FTPPublisher struct {
	cfg   FTPConfig
	retry resilience.RetryConfig
}

// NewFTPPublisher creates a publisher. An empty user logs in anonymously.
func NewFTPPublisher(cfg FTPConfig) *FTPPublisher {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	retry := resilience.DefaultRetryConfig()
	retry.OnRetry = resilience.RetryLogger("ftp", "publish")
	return &FTPPublisher{cfg: cfg, retry: retry}
}

// hostPort appends the default FTP port when the host has none.
func hostPort(host string) string {
	if _, _, err := net.SplitHostPort(host); err != nil {
		return net.JoinHostPort(host, "21")
	}
	return host
}

// Publish uploads the local file to the configured remote directory under
// the given name. Transient failures are retried.
func (p *FTPPublisher) Publish(ctx context.Context, localPath, remoteName string) error {
	remotePath := path.Join(p.cfg.Dir, remoteName)

	err := resilience.Do(ctx, p.retry, func(ctx context.Context) error {
		return p.upload(ctx, localPath, remotePath)
	})
	if err != nil {
		return eris.Wrapf(err, "export: publish %s", remoteName)
	}

	zap.L().Info("export published",
		zap.String("local", localPath),
		zap.String("remote", remotePath),
	)
	return nil
}

func (p *FTPPublisher) upload(ctx context.Context, localPath, remotePath string) error {
	f, err := os.Open(localPath)
	if err != nil {
		return eris.Wrapf(err, "open %s", localPath)
	}
	defer f.Close() //nolint:errcheck

	conn, err := ftp.Dial(hostPort(p.cfg.Host),
		ftp.DialWithTimeout(p.cfg.Timeout),
		ftp.DialWithContext(ctx),
	)
	if err != nil {
		return resilience.NewTransientError(eris.Wrap(err, "ftp dial"), 0)
	}
	defer conn.Quit() //nolint:errcheck

	user, pass := p.cfg.User, p.cfg.Password
	if user == "" {
		user, pass = "anonymous", "anonymous@"
	}
	if err := conn.Login(user, pass); err != nil {
		return eris.Wrap(err, "ftp login")
	}

	if err := conn.Stor(remotePath, f); err != nil {
		return resilience.NewTransientError(eris.Wrapf(err, "ftp store %s", remotePath), 0)
	}
	return nil
}
