package journal

import (
	"bufio"
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"os"
	"sync"
)

// FileModeDefault rw-r--r--
const FileModeDefault fs.FileMode = 0644

// Journal 只能追加的 JSON Lines 檔案，每筆資料一行
type Journal struct {
	file   *os.File
	writer *bufio.Writer
	mu     sync.Mutex
	// 每筆寫入後是否 fsync
	syncEveryWrite bool
}

// Option 設定 Journal
type Option func(*Journal)

// WithSyncEveryWrite 每次 Write 後都 flush 並呼叫 file.Sync
func WithSyncEveryWrite(enabled bool) Option {
	return func(j *Journal) {
		j.syncEveryWrite = enabled
	}
}

// Open 開啟或建立 journal 檔案
// O_APPEND 每次寫入時自動跳到文件末尾
// O_CREATE 如果文件不存在則建立
func Open(path string, opts ...Option) (*Journal, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_RDWR, FileModeDefault)
	if err != nil {
		return nil, err
	}
	j := &Journal{file: file, writer: bufio.NewWriter(file)}
	for _, opt := range opts {
		opt(j)
	}
	return j, nil
}

// Write 寫入一筆資料
func (j *Journal) Write(v any) error {
	line, err := json.Marshal(v)
	if err != nil {
		return err
	}
	line = append(line, '\n')

	j.mu.Lock()
	defer j.mu.Unlock()
	if _, err := j.writer.Write(line); err != nil {
		return err
	}
	if j.syncEveryWrite {
		return j.sync()
	}
	return nil
}

// Sync 把緩衝區寫出並強制刷入硬碟
func (j *Journal) Sync() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.sync()
}

func (j *Journal) sync() error {
	if err := j.writer.Flush(); err != nil {
		return err
	}
	return j.file.Sync()
}

// Close 刷入並關閉檔案
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if err := j.sync(); err != nil {
		_ = j.file.Close()
		return err
	}
	return j.file.Close()
}

// ReadAll 依寫入順序讀取所有資料
// callback 一次收到一行，避免整個檔案載入記憶體
func (j *Journal) ReadAll(callback func(raw json.RawMessage) error) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	// 先把緩衝區寫出，才讀得到剛寫入的資料
	if err := j.writer.Flush(); err != nil {
		return err
	}
	if _, err := j.file.Seek(0, io.SeekStart); err != nil {
		return err
	}

	decoder := json.NewDecoder(j.file)
	for {
		var raw json.RawMessage
		if err := decoder.Decode(&raw); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if err := callback(raw); err != nil {
			return err
		}
	}
}
