package rank

import "telegram-activity-bot/internal/model"

// openEndedMax caps the final tier; totals never realistically approach it.
const openEndedMax = 1_000_000_000

// DefaultTiers is the built-in rank ladder, seeded into the ranks table on
// startup. Contiguous bands from zero up to an open-ended final tier.
func DefaultTiers() []model.RankTier {
	return []model.RankTier{
		{Name: "🔍 Seeker", MinPoints: 0, MaxPoints: 99},
		{Name: "👣 Wanderer", MinPoints: 100, MaxPoints: 249},
		{Name: "📚 Apprentice", MinPoints: 250, MaxPoints: 499},
		{Name: "⚔️ Chat Warrior", MinPoints: 500, MaxPoints: 749},
		{Name: "🧙 Adept", MinPoints: 750, MaxPoints: 999},
		{Name: "🏹 Pathfinder", MinPoints: 1000, MaxPoints: 1499},
		{Name: "🛡️ Defender", MinPoints: 1500, MaxPoints: 1999},
		{Name: "🔮 Mystic", MinPoints: 2000, MaxPoints: 2499},
		{Name: "🧠 Sage", MinPoints: 2500, MaxPoints: 2999},
		{Name: "⚡ Elementalist", MinPoints: 3000, MaxPoints: 3499},
		{Name: "🌙 Nightblade", MinPoints: 3500, MaxPoints: 3999},
		{Name: "🌿 Grove Keeper", MinPoints: 4000, MaxPoints: 4499},
		{Name: "⛏️ Master Smith", MinPoints: 4500, MaxPoints: 4999},
		{Name: "🐉 Dragon Tamer", MinPoints: 5000, MaxPoints: 5999},
		{Name: "🧝 Elder Elf", MinPoints: 6000, MaxPoints: 6999},
		{Name: "🌋 Flame Lord", MinPoints: 7000, MaxPoints: 7999},
		{Name: "❄️ Ice Master", MinPoints: 8000, MaxPoints: 8999},
		{Name: "🌪️ Storm Ruler", MinPoints: 9000, MaxPoints: 9999},
		{Name: "🏰 Fortress Commander", MinPoints: 10000, MaxPoints: 11999},
		{Name: "👑 Province Ruler", MinPoints: 12000, MaxPoints: 13999},
		{Name: "💎 Artifact Collector", MinPoints: 14000, MaxPoints: 15999},
		{Name: "🌟 Star Mage", MinPoints: 16000, MaxPoints: 19999},
		{Name: "🔱 Sea Sovereign", MinPoints: 20000, MaxPoints: 23999},
		{Name: "⚜️ Royal Knight", MinPoints: 24000, MaxPoints: 27999},
		{Name: "🧿 Keeper of Secrets", MinPoints: 28000, MaxPoints: 31999},
		{Name: "🌓 Shadow Lord", MinPoints: 32000, MaxPoints: 39999},
		{Name: "🦅 Sky Warden", MinPoints: 40000, MaxPoints: 49999},
		{Name: "🏆 Legendary Hero", MinPoints: 50000, MaxPoints: 59999},
		{Name: "👁️ All-Seeing", MinPoints: 60000, MaxPoints: 79999},
		{Name: "🌈 World Keeper", MinPoints: 80000, MaxPoints: 99999},
		{Name: "🔥 Phoenix Avatar", MinPoints: 100000, MaxPoints: 149999},
		{Name: "⭐ Astral Sovereign", MinPoints: 150000, MaxPoints: 299999},
		{Name: "💫 Reality Shaper", MinPoints: 300000, MaxPoints: 999999},
		{Name: "✨ Divine Essence", MinPoints: 1000000, MaxPoints: openEndedMax},
	}
}

// Default returns a Table over DefaultTiers. It panics only if the
// built-in ladder is malformed, which is covered by tests.
func Default() *Table {
	t, err := NewTable(DefaultTiers())
	if err != nil {
		panic(err)
	}
	return t
}
