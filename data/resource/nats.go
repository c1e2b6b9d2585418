package resource

import (
	"context"
	stdErrors "errors"
	"strings"

	"github.com/nats-io/nats.go"

	"dbmap/errors"
)

// kvGetter nats.KeyValue 中用到的方法
type kvGetter interface {
	Get(key string) (nats.KeyValueEntry, error)
}

// NATSLoader 从 JetStream KV 桶读取资源。
//
// 名称中的 "/" 转换为 "."，与 FSLoader 的命名规则一致。
type NATSLoader struct {
	kv     kvGetter
	bucket string
	conn   *nats.Conn
}

// NewNATSLoader 使用已绑定的 KV 桶
func NewNATSLoader(kv nats.KeyValue) *NATSLoader {
	return &NATSLoader{kv: kv, bucket: kv.Bucket()}
}

// DialNATS 连接 NATS 并绑定已存在的 KV 桶，Close 时关闭连接
func DialNATS(url, bucket string) (*NATSLoader, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, errors.WrapError(err, errors.ErrCodeConfiguration, "connect nats "+url)
	}
	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, errors.WrapError(err, errors.ErrCodeConfiguration, "open jetstream")
	}
	kv, err := js.KeyValue(bucket)
	if err != nil {
		conn.Close()
		return nil, errors.WrapError(err, errors.ErrCodeConfiguration, "bind kv bucket "+bucket)
	}
	return &NATSLoader{kv: kv, bucket: bucket, conn: conn}, nil
}

// Load 读取键 name 的最新值
func (l *NATSLoader) Load(ctx context.Context, name string) (string, error) {
	if err := checkName(name); err != nil {
		return "", err
	}
	key := KeyName(name)
	entry, err := l.kv.Get(key)
	if stdErrors.Is(err, nats.ErrKeyNotFound) {
		return "", notFound(name, "nats bucket "+l.bucket)
	}
	if err != nil {
		return "", errors.WrapError(err, errors.ErrCodeInternal, "nats kv get "+key).
			WithContext(errors.DetailResource, name)
	}
	return string(entry.Value()), nil
}

// Close 关闭 DialNATS 建立的连接
func (l *NATSLoader) Close() error {
	if l.conn != nil {
		l.conn.Close()
	}
	return nil
}

// KeyName 资源名对应的 KV 键
func KeyName(name string) string {
	return strings.ReplaceAll(strings.Trim(name, "/"), "/", ".")
}
