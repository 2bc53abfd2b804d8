package leaderboard

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// Store 排行榜持久化，由模拟核心之外的存储协作者实现
type Store interface {
	Load() ([]Entry, error)
	Submit(e Entry) ([]Entry, error)
}

// FileStore 以 JSON 数组保存在本地文件，写入使用临时文件 + rename
type FileStore struct {
	path string
	mu   sync.Mutex
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Load() ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Submit 合并一条记录并落盘，返回合并后的榜单
func (s *FileStore) Submit(e Entry) ([]Entry, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.load()
	if err != nil {
		return nil, err
	}
	list = Merge(list, e)
	if err := s.save(list); err != nil {
		return nil, err
	}
	return list, nil
}

func (s *FileStore) load() ([]Entry, error) {
	b, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("leaderboard: read %s: %w", s.path, err)
	}
	if len(b) == 0 {
		return nil, nil
	}
	var list []Entry
	if err := json.Unmarshal(b, &list); err != nil {
		return nil, fmt.Errorf("leaderboard: decode %s: %w", s.path, err)
	}
	// 文件可能被外部改动，读取时重新规整
	Sort(list)
	if len(list) > Capacity {
		list = list[:Capacity]
	}
	return list, nil
}

func (s *FileStore) save(list []Entry) error {
	b, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return fmt.Errorf("leaderboard: encode: %w", err)
	}
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".leaderboard-*.json")
	if err != nil {
		return fmt.Errorf("leaderboard: temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return fmt.Errorf("leaderboard: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("leaderboard: close: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("leaderboard: rename: %w", err)
	}
	return nil
}
