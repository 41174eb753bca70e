package cache

import (
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/ceyewan/fuse/cache/serializer"
	"github.com/ceyewan/fuse/clog"
	"github.com/ceyewan/fuse/xerrors"
)

// fileStore 文件缓存层
//
// 每个缓存键对应 <dir>/<slug> 一个文件，内容为值的序列化形式。
// 新鲜度依据文件修改时间判定：now - mtime <= ttl。
// 过期文件会被删除而不是刷新，由上层重新计算后覆盖写入。
type fileStore struct {
	dir    string
	ttl    time.Duration
	codec  serializer.Serializer
	logger clog.Logger
}

// newFileStore 创建文件缓存层，确保工作目录存在
func newFileStore(dir string, ttl time.Duration, codec serializer.Serializer, logger clog.Logger) (*fileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, xerrors.Wrapf(err, "failed to create cache dir %s", dir)
	}
	return &fileStore{
		dir:    dir,
		ttl:    ttl,
		codec:  codec,
		logger: logger,
	}, nil
}

// path 返回缓存键对应的文件路径
func (f *fileStore) path(key string) string {
	return filepath.Join(f.dir, Slug(key))
}

// load 读取并反序列化缓存文件
//
// 返回 (true, nil) 表示命中。以下情况均按未命中处理：
//   - 文件不存在（包括被并发的覆盖写入短暂删除的窗口）
//   - 文件过期（同时删除该文件）
//   - 文件损坏或无法反序列化（同时删除该文件）
func (f *fileStore) load(key string, dest any) (bool, error) {
	path := f.path(key)

	info, err := os.Stat(path)
	if err != nil {
		if xerrors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, xerrors.Wrapf(err, "failed to stat cache file %s", path)
	}

	if time.Since(info.ModTime()) > f.ttl {
		f.logger.Debug("stale cache file removed",
			clog.String("key", key),
			clog.String("path", path))
		_ = os.Remove(path)
		return false, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if xerrors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, xerrors.Wrapf(err, "failed to read cache file %s", path)
	}

	if err := f.codec.Unmarshal(data, dest); err != nil {
		// 损坏的缓存文件按未命中处理，删除后由上层重新计算
		f.logger.Warn("corrupt cache file removed",
			clog.String("key", key),
			clog.String("path", path),
			clog.Error(err))
		_ = os.Remove(path)
		return false, nil
	}

	return true, nil
}

// store 序列化并写入缓存文件
//
// 采用先删除后写入的方式覆盖旧条目，两步之间不保证原子性：
// 并发读取可能观察到文件缺失，load 会将其按未命中处理。
func (f *fileStore) store(key string, value any) error {
	data, err := f.codec.Marshal(value)
	if err != nil {
		return xerrors.Wrapf(err, "failed to serialize cache value for key %s", key)
	}

	path := f.path(key)
	_ = os.Remove(path)

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return xerrors.Wrapf(err, "failed to write cache file %s", path)
	}
	return nil
}

// delete 移除缓存文件，文件不存在不视为错误
func (f *fileStore) delete(key string) error {
	err := os.Remove(f.path(key))
	if err != nil && !xerrors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
