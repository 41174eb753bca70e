// Package serializer 提供缓存值的编解码能力。
//
// 支持 JSON 与 MessagePack 两种格式，并可通过 WithCompression
// 叠加 zstd 压缩，用于降低文件缓存的磁盘占用。
package serializer

import (
	"encoding/json"
	"fmt"

	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"
)

// 错误定义
var (
	// ErrUnsupportedSerializer 不支持的序列化器类型
	ErrUnsupportedSerializer = fmt.Errorf("unsupported serializer type")
)

// Serializer 定义序列化接口
type Serializer interface {
	Marshal(value any) ([]byte, error)
	Unmarshal(data []byte, dest any) error
}

// JSONSerializer JSON 序列化器
type JSONSerializer struct{}

// Marshal 序列化为 JSON
func (j *JSONSerializer) Marshal(value any) ([]byte, error) {
	return json.Marshal(value)
}

// Unmarshal 从 JSON 反序列化
func (j *JSONSerializer) Unmarshal(data []byte, dest any) error {
	return json.Unmarshal(data, dest)
}

// MessagePackSerializer MessagePack 序列化器
type MessagePackSerializer struct{}

// Marshal 序列化为 MessagePack
// MessagePack 比 JSON 更高效：序列化速度快 2-3 倍，数据体积小 20-30%
func (m *MessagePackSerializer) Marshal(value any) ([]byte, error) {
	return msgpack.Marshal(value)
}

// Unmarshal 从 MessagePack 反序列化
func (m *MessagePackSerializer) Unmarshal(data []byte, dest any) error {
	return msgpack.Unmarshal(data, dest)
}

// New 创建序列化器
//
// 支持的序列化器类型:
//   - "json": 标准库 JSON 序列化，兼容性最好
//   - "msgpack": MessagePack 二进制序列化，性能更优
func New(serializerType string) (Serializer, error) {
	switch serializerType {
	case "json", "":
		return &JSONSerializer{}, nil
	case "msgpack":
		return &MessagePackSerializer{}, nil
	default:
		return nil, ErrUnsupportedSerializer
	}
}

// compressedSerializer 在内层序列化器之上叠加 zstd 压缩
type compressedSerializer struct {
	inner   Serializer
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// WithCompression 为序列化器叠加 zstd 压缩
//
// Marshal 的输出为 zstd 帧，Unmarshal 要求输入为 zstd 帧。
// 压缩前后的数据不互相兼容，启用压缩后不应再用原始格式读取旧文件。
func WithCompression(inner Serializer) (Serializer, error) {
	encoder, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, err
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	return &compressedSerializer{
		inner:   inner,
		encoder: encoder,
		decoder: decoder,
	}, nil
}

// Marshal 先用内层序列化器编码，再压缩
func (c *compressedSerializer) Marshal(value any) ([]byte, error) {
	data, err := c.inner.Marshal(value)
	if err != nil {
		return nil, err
	}
	return c.encoder.EncodeAll(data, nil), nil
}

// Unmarshal 先解压缩，再用内层序列化器解码
func (c *compressedSerializer) Unmarshal(data []byte, dest any) error {
	raw, err := c.decoder.DecodeAll(data, nil)
	if err != nil {
		return err
	}
	return c.inner.Unmarshal(raw, dest)
}
