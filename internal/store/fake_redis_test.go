package store

import (
	"context"
	"net"
	"sort"
	"strings"
	"sync"

	"github.com/redis/go-redis/v9"
)

// memoryHook answers the handful of commands the stores use without a server.
type memoryHook struct {
	mu   sync.Mutex
	data map[string]string
	sets map[string]map[string]float64
	err  error
}

func newMemoryClient() (*redis.Client, *memoryHook) {
	hook := &memoryHook{data: make(map[string]string), sets: make(map[string]map[string]float64)}
	client := redis.NewClient(&redis.Options{Addr: "memory:0"})
	client.AddHook(hook)
	return client, hook
}

func (h *memoryHook) DialHook(next redis.DialHook) redis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		return next(ctx, network, addr)
	}
}

func (h *memoryHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return next
}

func (h *memoryHook) ProcessHook(_ redis.ProcessHook) redis.ProcessHook {
	return func(_ context.Context, cmd redis.Cmder) error {
		h.mu.Lock()
		defer h.mu.Unlock()
		if h.err != nil {
			cmd.SetErr(h.err)
			return h.err
		}

		args := cmd.Args()
		switch strings.ToLower(cmd.Name()) {
		case "get":
			c := cmd.(*redis.StringCmd)
			val, ok := h.data[str(args[1])]
			if !ok {
				c.SetErr(redis.Nil)
				return redis.Nil
			}
			c.SetVal(val)
		case "exists":
			var n int64
			for _, key := range args[1:] {
				if _, ok := h.data[str(key)]; ok {
					n++
				}
			}
			cmd.(*redis.IntCmd).SetVal(n)
		case "setnx":
			key := str(args[1])
			_, exists := h.data[key]
			if !exists {
				h.data[key] = str(args[2])
			}
			cmd.(*redis.BoolCmd).SetVal(!exists)
		case "set":
			key := str(args[1])
			nx := false
			for _, a := range args[3:] {
				if strings.EqualFold(str(a), "nx") {
					nx = true
				}
			}
			_, exists := h.data[key]
			if nx {
				if !exists {
					h.data[key] = str(args[2])
				}
				cmd.(*redis.BoolCmd).SetVal(!exists)
				return nil
			}
			h.data[key] = str(args[2])
			cmd.(*redis.StatusCmd).SetVal("OK")
		case "zadd":
			key := str(args[1])
			set, ok := h.sets[key]
			if !ok {
				set = make(map[string]float64)
				h.sets[key] = set
			}
			var added int64
			for i := 2; i+1 < len(args); i += 2 {
				member := str(args[i+1])
				if _, exists := set[member]; !exists {
					added++
				}
				set[member] = args[i].(float64)
			}
			cmd.(*redis.IntCmd).SetVal(added)
		case "zrevrange":
			set := h.sets[str(args[1])]
			members := make([]string, 0, len(set))
			for m := range set {
				members = append(members, m)
			}
			sort.Slice(members, func(i, j int) bool { return set[members[i]] > set[members[j]] })
			start, stop := int(args[2].(int64)), int(args[3].(int64))
			if stop >= len(members) || stop < 0 {
				stop = len(members) - 1
			}
			if start > stop {
				members = nil
			} else {
				members = members[start : stop+1]
			}
			cmd.(*redis.StringSliceCmd).SetVal(members)
		}
		return nil
	}
}

func str(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	default:
		return ""
	}
}
