package config

var CategoryWeights = map[string]int{
	"🕯️ Information": 0,
	"🎭 Training":     10,
	"🏆 Rating":       20,
}
