// Package store 实现基于 MongoDB 的持久化。id 一律以 hex 字符串进出，
// 非法格式在这里统一转成 ErrInvalidID。
package store

import (
	"errors"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// ErrInvalidID 表示调用方传入的 id 不是合法的 ObjectID hex。
var ErrInvalidID = errors.New("invalid id")

func parseID(id string) (bson.ObjectID, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return bson.ObjectID{}, ErrInvalidID
	}
	return oid, nil
}
