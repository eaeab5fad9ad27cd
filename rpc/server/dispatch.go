package server

import (
	"encoding/json"
	"github.com/ValentinKolb/dTodo/lib/store"
	"github.com/ValentinKolb/dTodo/rpc/common"
)

// dispatch executes a single request against s and builds the matching response
func dispatch(req *common.Message, s store.IStore) *common.Message {
	switch req.MsgType {
	case common.MsgTKVSet:
		return common.NewSetResponse(s.Set(req.Key, req.Value))
	case common.MsgTKVDelete:
		return common.NewDeleteResponse(s.Delete(req.Key))
	case common.MsgTKVGet:
		return common.NewGetResponse(s.Get(req.Key))
	case common.MsgTKVHas:
		return common.NewHasResponse(s.Has(req.Key))
	case common.MsgTKVKeys:
		return common.NewKeysResponse(s.Keys())
	case common.MsgTKVInfo:
		info, err := s.GetDBInfo()
		if err != nil {
			return common.NewInfoResponse(nil, err)
		}
		return common.NewInfoResponse(json.Marshal(info))
	default:
		return common.NewErrorResponse("unsupported message type: " + req.MsgType.String())
	}
}
