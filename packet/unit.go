package packet

import (
	"fmt"
	"sync"
	"time"

	"github.com/asticode/go-astiav"
	"github.com/xaionaro-go/avplayer/avconv"
	"github.com/xaionaro-go/avplayer/types"
	"github.com/xaionaro-go/typing"
)

// Unit is a demuxed packet; it goes back to Pool on Release.
type Unit struct {
	Packet   *astiav.Packet
	TimeBase astiav.Rational

	releaseOnce sync.Once
}

var _ types.EncodedUnit = (*Unit)(nil)

func NewUnit(pkt *astiav.Packet, timeBase astiav.Rational) *Unit {
	return &Unit{
		Packet:   pkt,
		TimeBase: timeBase,
	}
}

func (u *Unit) StreamIndex() int {
	return u.Packet.StreamIndex()
}

func (u *Unit) PTS() typing.Optional[time.Duration] {
	return avconv.Duration(u.Packet.Pts(), u.TimeBase)
}

// Duration is unset if the container does not know it.
func (u *Unit) Duration() typing.Optional[time.Duration] {
	if u.Packet.Duration() <= 0 {
		return typing.Optional[time.Duration]{}
	}
	return avconv.Duration(u.Packet.Duration(), u.TimeBase)
}

func (u *Unit) Release() {
	u.releaseOnce.Do(func() {
		Pool.Put(u.Packet)
		u.Packet = nil
	})
}

func (u *Unit) String() string {
	if u.Packet == nil {
		return "Unit(released)"
	}
	return fmt.Sprintf("Unit(stream:%d, pts:%d, dts:%d, size:%d)", u.Packet.StreamIndex(), u.Packet.Pts(), u.Packet.Dts(), u.Packet.Size())
}
