package policy

import "time"

func nanoClock() int64 { return time.Now().UnixNano() }

func unixClock() int64 { return time.Now().Unix() }
