package store

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// selfWriteWindow is how long after our own write a filesystem event for the
// same domain is treated as an echo of that write rather than a remote one.
const selfWriteWindow = 2 * time.Second

type saveRequest struct {
	domain string
	doc    []byte
}

// FileStore keeps one <domain>.json document per domain under a data
// directory. Saves go through a buffered queue drained by a single worker;
// a watcher on the directory reports documents rewritten by other processes.
type FileStore struct {
	dir     string
	queue   chan saveRequest
	updates chan string
	watcher *fsnotify.Watcher

	mu         sync.Mutex
	selfWrites map[string]time.Time

	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewFileStore opens (creating if needed) the data directory and starts the
// save worker and the remote-update watcher.
func NewFileStore(dir string, queueSize int) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	if queueSize <= 0 {
		queueSize = 64
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("watch data directory: %w", err)
	}

	s := &FileStore{
		dir:        dir,
		queue:      make(chan saveRequest, queueSize),
		updates:    make(chan string, 16),
		watcher:    watcher,
		selfWrites: make(map[string]time.Time),
		done:       make(chan struct{}),
	}

	s.wg.Add(2)
	go s.saveWorker()
	go s.watchLoop()
	return s, nil
}

// Load reads a domain document, returning the documented default shape when
// nothing has been stored yet.
func (s *FileStore) Load(_ context.Context, domain string) ([]byte, error) {
	data, err := os.ReadFile(s.path(domain))
	if os.IsNotExist(err) {
		return DefaultDoc(domain), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", domain, err)
	}
	return data, nil
}

// Save enqueues a fire-and-forget write. When the queue is full the document
// is dropped with a warning; the next save of the same domain supersedes it
// anyway.
func (s *FileStore) Save(domain string, doc []byte) {
	select {
	case <-s.done:
		return
	default:
	}
	select {
	case s.queue <- saveRequest{domain: domain, doc: doc}:
	default:
		slog.Warn("save queue full, dropping document", "domain", domain)
	}
}

// Updates returns the remote-update push channel. Each value is the key of a
// domain whose document was changed by another process.
func (s *FileStore) Updates() <-chan string {
	return s.updates
}

// Close stops the worker and the watcher. Queued saves that have not been
// picked up yet are flushed first.
func (s *FileStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.done)
		_ = s.watcher.Close()
	})
	s.wg.Wait()
	return nil
}

func (s *FileStore) path(domain string) string {
	return filepath.Join(s.dir, domain+".json")
}

func (s *FileStore) saveWorker() {
	defer s.wg.Done()
	for {
		select {
		case req := <-s.queue:
			s.write(req)
		case <-s.done:
			// Drain whatever is still queued before exiting.
			for {
				select {
				case req := <-s.queue:
					s.write(req)
				default:
					return
				}
			}
		}
	}
}

func (s *FileStore) write(req saveRequest) {
	s.mu.Lock()
	s.selfWrites[req.domain] = time.Now()
	s.mu.Unlock()

	path := s.path(req.domain)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, req.doc, 0o644); err != nil {
		slog.Error("write domain document failed", "domain", req.domain, "error", err)
		return
	}
	if err := os.Rename(tmp, path); err != nil {
		slog.Error("rename domain document failed", "domain", req.domain, "error", err)
	}
}

func (s *FileStore) watchLoop() {
	defer s.wg.Done()
	for {
		select {
		case ev, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			s.handleEvent(ev)
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("file watcher error", "error", err)
		case <-s.done:
			return
		}
	}
}

func (s *FileStore) handleEvent(ev fsnotify.Event) {
	if !ev.Op.Has(fsnotify.Write) && !ev.Op.Has(fsnotify.Create) {
		return
	}
	base := filepath.Base(ev.Name)
	if !strings.HasSuffix(base, ".json") {
		return
	}
	domain := strings.TrimSuffix(base, ".json")

	s.mu.Lock()
	last, ours := s.selfWrites[domain]
	s.mu.Unlock()
	if ours && time.Since(last) < selfWriteWindow {
		return
	}

	select {
	case s.updates <- domain:
	default:
		slog.Warn("update channel full, dropping remote update", "domain", domain)
	}
}
