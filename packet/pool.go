// Package packet provides pooled libav packets and the encoded unit
// built on them.
package packet

import (
	"github.com/asticode/go-astiav"
	"github.com/xaionaro-go/avplayer/pool"
)

var Pool = pool.New(
	astiav.AllocPacket,
	func(p *astiav.Packet) { p.Unref() },
	func(p *astiav.Packet) { p.Free() },
)
