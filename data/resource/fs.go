package resource

import (
	"context"
	stdErrors "errors"
	"io/fs"
	"regexp"
	"strings"

	"dbmap/errors"
)

// FSLoader 从文件系统（通常是 embed.FS）读取资源。
//
// 路径中的 "/" 与 "." 等价：名称 "GetAlbums.sql"、"queries.GetAlbums.sql" 和
// "queries/GetAlbums.sql" 都能匹配 "sql/queries/GetAlbums.sql"。
// 多个文件匹配时取遍历顺序（字典序）中的第一个。
type FSLoader struct {
	fsys fs.FS
}

// NewFSLoader 创建 FSLoader
func NewFSLoader(fsys fs.FS) *FSLoader {
	return &FSLoader{fsys: fsys}
}

// Load 读取名称匹配的第一个文件
func (l *FSLoader) Load(ctx context.Context, name string) (string, error) {
	if err := checkName(name); err != nil {
		return "", err
	}
	path, err := l.Find(name)
	if err != nil {
		return "", err
	}
	data, err := fs.ReadFile(l.fsys, path)
	if err != nil {
		return "", errors.WrapError(err, errors.ErrCodeInternal, "read sql resource "+path).
			WithContext(errors.DetailResource, name)
	}
	return string(data), nil
}

// Find 返回名称匹配的第一个文件路径
func (l *FSLoader) Find(name string) (string, error) {
	if err := checkName(name); err != nil {
		return "", err
	}
	pattern := regexp.MustCompile(`^([A-Za-z0-9_-]+\.)*` + regexp.QuoteMeta(dotted(name)) + `$`)

	var found string
	err := fs.WalkDir(l.fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if pattern.MatchString(dotted(path)) {
			found = path
			return fs.SkipAll
		}
		return nil
	})
	if err != nil && !stdErrors.Is(err, fs.SkipAll) {
		return "", errors.WrapError(err, errors.ErrCodeInternal, "walk sql resources")
	}
	if found == "" {
		return "", notFound(name, "embedded resources")
	}
	return found, nil
}

func dotted(path string) string {
	return strings.ReplaceAll(path, "/", ".")
}
