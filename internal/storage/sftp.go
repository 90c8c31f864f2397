package storage

import (
	"fmt"
	"io"
	"os"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"

	"garderobe/internal/config"
)

// SFTP stores files on a remote host. Each operation opens a fresh
// connection; the app runs behind a single worker so connection reuse is
// not worth the bookkeeping of a broken-pipe recovery path.
type SFTP struct {
	host     string
	port     int
	user     string
	password string
	keyPath  string
	root     string
	baseURL  string
}

func NewSFTP(cfg *config.Config) (*SFTP, error) {
	if cfg.SFTPHost == "" || cfg.SFTPUser == "" {
		return nil, fmt.Errorf("sftp storage requires SFTP_HOST and SFTP_USER")
	}
	if cfg.SFTPPassword == "" && cfg.SFTPKeyPath == "" {
		return nil, fmt.Errorf("sftp storage requires SFTP_PASSWORD or SFTP_KEY_PATH")
	}

	return &SFTP{
		host:     cfg.SFTPHost,
		port:     cfg.SFTPPort,
		user:     cfg.SFTPUser,
		password: cfg.SFTPPassword,
		keyPath:  cfg.SFTPKeyPath,
		root:     cfg.SFTPRootPath,
		baseURL:  cfg.MediaURL,
	}, nil
}

func (s *SFTP) connect() (*ssh.Client, *sftp.Client, error) {
	var auth []ssh.AuthMethod
	if s.keyPath != "" {
		key, err := os.ReadFile(s.keyPath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read ssh key: %w", err)
		}
		signer, err := ssh.ParsePrivateKey(key)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to parse ssh key: %w", err)
		}
		auth = append(auth, ssh.PublicKeys(signer))
	}
	if s.password != "" {
		auth = append(auth, ssh.Password(s.password))
	}

	sshCfg := &ssh.ClientConfig{
		User:            s.user,
		Auth:            auth,
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         10 * time.Second,
	}

	addr := fmt.Sprintf("%s:%d", s.host, s.port)
	conn, err := ssh.Dial("tcp", addr, sshCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to dial sftp host: %w", err)
	}

	client, err := sftp.NewClient(conn)
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("failed to open sftp session: %w", err)
	}

	return conn, client, nil
}

func (s *SFTP) remotePath(name string) (string, error) {
	cleaned, err := cleanName(name)
	if err != nil {
		return "", err
	}
	return path.Join(s.root, cleaned), nil
}

func (s *SFTP) Save(name string, r io.Reader) (string, error) {
	name, err := cleanName(name)
	if err != nil {
		return "", err
	}

	conn, client, err := s.connect()
	if err != nil {
		return "", err
	}
	defer conn.Close()
	defer client.Close()

	name = availableName(s, name)
	full, err := s.remotePath(name)
	if err != nil {
		return "", err
	}

	if err := client.MkdirAll(path.Dir(full)); err != nil {
		return "", fmt.Errorf("failed to create remote directory: %w", err)
	}

	f, err := client.Create(full)
	if err != nil {
		return "", fmt.Errorf("failed to create remote file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		client.Remove(full)
		return "", fmt.Errorf("failed to write remote file: %w", err)
	}

	if err := client.Chmod(full, 0o644); err != nil {
		return "", fmt.Errorf("failed to chmod remote file: %w", err)
	}

	return name, nil
}

// sftpFile keeps the connection open until the caller closes the file.
type sftpFile struct {
	*sftp.File
	conn   *ssh.Client
	client *sftp.Client
}

func (f *sftpFile) Close() error {
	err := f.File.Close()
	f.client.Close()
	f.conn.Close()
	return err
}

func (s *SFTP) Open(name string) (io.ReadCloser, error) {
	full, err := s.remotePath(name)
	if err != nil {
		return nil, err
	}

	conn, client, err := s.connect()
	if err != nil {
		return nil, err
	}

	f, err := client.Open(full)
	if err != nil {
		client.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to open remote file: %w", err)
	}

	return &sftpFile{File: f, conn: conn, client: client}, nil
}

func (s *SFTP) Exists(name string) (bool, error) {
	full, err := s.remotePath(name)
	if err != nil {
		return false, err
	}

	conn, client, err := s.connect()
	if err != nil {
		return false, err
	}
	defer conn.Close()
	defer client.Close()

	_, err = client.Stat(full)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat remote file: %w", err)
	}

	return true, nil
}

// Delete removes the remote file. A missing file is not an error.
func (s *SFTP) Delete(name string) error {
	full, err := s.remotePath(name)
	if err != nil {
		return err
	}

	conn, client, err := s.connect()
	if err != nil {
		return err
	}
	defer conn.Close()
	defer client.Close()

	if err := client.Remove(full); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete remote file: %w", err)
	}

	return nil
}

func (s *SFTP) Size(name string) (int64, error) {
	full, err := s.remotePath(name)
	if err != nil {
		return 0, err
	}

	conn, client, err := s.connect()
	if err != nil {
		return 0, err
	}
	defer conn.Close()
	defer client.Close()

	info, err := client.Stat(full)
	if err != nil {
		return 0, fmt.Errorf("failed to stat remote file: %w", err)
	}

	return info.Size(), nil
}

func (s *SFTP) URL(name string) string {
	return strings.TrimSuffix(s.baseURL, "/") + "/" + strings.TrimPrefix(name, "/")
}

func (s *SFTP) ListDir(name string) ([]string, []string, error) {
	full, err := s.remotePath(name)
	if err != nil {
		return nil, nil, err
	}

	conn, client, err := s.connect()
	if err != nil {
		return nil, nil, err
	}
	defer conn.Close()
	defer client.Close()

	entries, err := client.ReadDir(full)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list remote directory: %w", err)
	}

	var dirs, files []string
	for _, entry := range entries {
		if entry.IsDir() {
			dirs = append(dirs, entry.Name())
		} else {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(dirs)
	sort.Strings(files)

	return dirs, files, nil
}
