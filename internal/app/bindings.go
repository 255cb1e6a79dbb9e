package app

import (
	"fmt"
	"log"

	"github.com/TanaroSch/hotkey-snippets/internal/config"
	"github.com/TanaroSch/hotkey-snippets/internal/engine"
	"github.com/TanaroSch/hotkey-snippets/internal/store"
)

// DefaultBindings are written when no bindings file exists yet.
func DefaultBindings() []engine.Binding {
	return []engine.Binding{
		{Text: "已使自身本场比赛的积分得失加倍!", Chord: "cmd+y"},
		{Text: "由于挂机行为已经被系统从游戏中踢出，他的战绩也会记录为逃跑，玩家现在离开该场比赛将不会被判定为放弃。", Chord: "cmd+u"},
		{Text: "已经放弃了游戏，这场比赛不计入天梯积分，剩余玩家可以自由退出。", Chord: "cmd+i"},
		{Text: "由于长时间没有重连至游戏，系统判定他为逃跑。玩家现在离开该场比赛将不会被判定为放弃。", Chord: "cmd+o"},
		{Text: "已经连续258次预测他们队伍将取得胜利！", Chord: "cmd+p"},
		{Text: "经系统检测：玩家XXXXXX存在代练或共享账号嫌疑，遵守社区游戏规范，再次违反将进行封禁处理。", Chord: "cmd+["},
	}
}

// OpenSecrets opens the keyring for secret snippets. Without a usable
// keyring secret snippets are unavailable but everything else works.
func OpenSecrets(cfg *config.Config) store.SecretStore {
	kr, err := cfg.OpenKeyring()
	if err != nil {
		log.Printf("Warning: keyring unavailable, secret snippets disabled: %v", err)
		return nil
	}
	return store.NewKeyringSecrets(kr, cfg.KeyringService)
}

// LoadBindings reads the bindings file, seeding it with DefaultBindings when
// it does not exist.
func LoadBindings(st *store.Store) ([]engine.Binding, error) {
	if !st.Exists() {
		defaults := DefaultBindings()
		log.Printf("Bindings file '%s' not found. Writing %d default snippets.", st.Path(), len(defaults))
		if err := st.Save(defaults); err != nil {
			return defaults, fmt.Errorf("failed to write default bindings: %w", err)
		}
		return defaults, nil
	}
	return st.Load()
}

// chords lists the chords of bindings in registry order.
func chords(bindings []engine.Binding) []string {
	out := make([]string, 0, len(bindings))
	for _, b := range bindings {
		out = append(out, b.Chord)
	}
	return out
}
