package model

import (
	"encoding/gob"
	"fmt"
	"io"
	"os"

	"github.com/YuminosukeSato/cartboost/pkg/errors"
)

// FormatVersion は保存形式のバージョン。互換性のない変更で上げる。
const FormatVersion = 1

// header は保存ファイルの先頭に書かれるメタ情報
type header struct {
	Kind    string
	Version int
}

// SaveModel はモデルをファイルに保存する
//
// 使用例:
//
//	err := model.SaveModel("GBM", ensemble, "model.gob")
func SaveModel(kind string, m interface{}, filename string) (err error) {
	file, err := os.Create(filename)
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", filename)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = errors.Wrap(cerr, "failed to close model file")
		}
	}()
	return SaveModelToWriter(kind, m, file)
}

// LoadModel はファイルからモデルを読み込む。kindが保存時と異なる場合はエラー。
func LoadModel(kind string, m interface{}, filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return errors.Wrapf(err, "failed to open %s", filename)
	}
	defer file.Close()
	return LoadModelFromReader(kind, m, file)
}

// SaveModelToWriter はヘッダとモデルをio.Writerに書き込む
func SaveModelToWriter(kind string, m interface{}, w io.Writer) error {
	enc := gob.NewEncoder(w)
	if err := enc.Encode(header{Kind: kind, Version: FormatVersion}); err != nil {
		return errors.Wrap(err, "failed to encode header")
	}
	if err := enc.Encode(m); err != nil {
		return errors.Wrap(err, "failed to encode model")
	}
	return nil
}

// LoadModelFromReader はio.Readerからヘッダを検証してモデルを読み込む
func LoadModelFromReader(kind string, m interface{}, r io.Reader) error {
	dec := gob.NewDecoder(r)
	var h header
	if err := dec.Decode(&h); err != nil {
		return errors.Wrap(err, "failed to decode header")
	}
	if h.Kind != kind {
		return errors.NewValueError("LoadModel", "stored model is a "+h.Kind+", not a "+kind)
	}
	if h.Version != FormatVersion {
		return errors.NewValueError("LoadModel", fmt.Sprintf("unsupported format version %d", h.Version))
	}
	if err := dec.Decode(m); err != nil {
		return errors.Wrap(err, "failed to decode model")
	}
	return nil
}
