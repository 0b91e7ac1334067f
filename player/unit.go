package player

import (
	"github.com/xaionaro-go/avplayer/types"
)

// stampedUnit is an encoded unit tagged with the seek generation it was
// demuxed in.
type stampedUnit struct {
	types.EncodedUnit
	Generation uint64
}

func releaseUnit(unit stampedUnit) {
	unit.Release()
}
