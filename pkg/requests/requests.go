// Package requests holds the bmRequestType and bRequest values of UVC class
// requests, UVC spec 1.5, section 4.
package requests

import "fmt"

type RequestType uint8

const (
	RequestTypeVideoInterfaceSetRequest RequestType = 0b00100001
	RequestTypeDataEndpointSetRequest   RequestType = 0b00100010
	RequestTypeVideoInterfaceGetRequest RequestType = 0b10100001
	RequestTypeDataEndpointGetRequest   RequestType = 0b10100010
)

// DeviceToHost reports the direction bit.
func (t RequestType) DeviceToHost() bool {
	return t&0x80 != 0
}

type RequestCode uint8

const (
	RequestCodeUndefined RequestCode = 0x00
	RequestCodeSetCur    RequestCode = 0x01
	RequestCodeSetCurAll RequestCode = 0x11
	RequestCodeGetCur    RequestCode = 0x81
	RequestCodeGetMin    RequestCode = 0x82
	RequestCodeGetMax    RequestCode = 0x83
	RequestCodeGetRes    RequestCode = 0x84
	RequestCodeGetLen    RequestCode = 0x85
	RequestCodeGetInfo   RequestCode = 0x86
	RequestCodeGetDef    RequestCode = 0x87
	RequestCodeGetCurAll RequestCode = 0x91
	RequestCodeGetMinAll RequestCode = 0x92
	RequestCodeGetMaxAll RequestCode = 0x93
	RequestCodeGetResAll RequestCode = 0x94
	RequestCodeGetDefAll RequestCode = 0x97
)

var codeNames = map[RequestCode]string{
	RequestCodeSetCur:    "SET_CUR",
	RequestCodeSetCurAll: "SET_CUR_ALL",
	RequestCodeGetCur:    "GET_CUR",
	RequestCodeGetMin:    "GET_MIN",
	RequestCodeGetMax:    "GET_MAX",
	RequestCodeGetRes:    "GET_RES",
	RequestCodeGetLen:    "GET_LEN",
	RequestCodeGetInfo:   "GET_INFO",
	RequestCodeGetDef:    "GET_DEF",
	RequestCodeGetCurAll: "GET_CUR_ALL",
	RequestCodeGetMinAll: "GET_MIN_ALL",
	RequestCodeGetMaxAll: "GET_MAX_ALL",
	RequestCodeGetResAll: "GET_RES_ALL",
	RequestCodeGetDefAll: "GET_DEF_ALL",
}

func (c RequestCode) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("RC_%#02x", uint8(c))
}
