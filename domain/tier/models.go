package tier

// ModelInfo describes one served model for discovery listings.
type ModelInfo struct {
	ID           string
	Name         string
	Description  string
	Capabilities []string
}

var modelInfo = map[string]ModelInfo{
	ModelAnalytics: {
		Name:         "Crowe Logic Analytics",
		Description:  "Advanced data analysis and business intelligence",
		Capabilities: []string{"data_analysis", "visualization", "reporting", "insights"},
	},
	ModelDevelopment: {
		Name:         "Crowe Logic Development",
		Description:  "Intelligent software development and coding assistance",
		Capabilities: []string{"code_generation", "debugging", "optimization", "testing"},
	},
	ModelCreative: {
		Name:         "Crowe Logic Creative",
		Description:  "Creative content generation and marketing intelligence",
		Capabilities: []string{"content_creation", "marketing", "design", "branding"},
	},
	ModelIntelligence: {
		Name:         "Crowe Logic Intelligence",
		Description:  "General-purpose business intelligence and decision support",
		Capabilities: []string{"reasoning", "decision_support", "strategy", "analysis"},
	},
	ModelAssistant: {
		Name:         "Crowe Logic Assistant",
		Description:  "Intelligent personal and business assistant",
		Capabilities: []string{"assistance", "productivity", "scheduling", "communication"},
	},
	ModelGlobal: {
		Name:         "Crowe Logic Global",
		Description:  "Multi-language and international business intelligence",
		Capabilities: []string{"translation", "global_insights", "cultural_analysis", "localization"},
	},
	ModelResearch: {
		Name:         "Crowe Logic Research",
		Description:  "Advanced research and knowledge discovery",
		Capabilities: []string{"research", "knowledge_extraction", "synthesis", "discovery"},
	},
	ModelAgent: {
		Name:         "Crowe Logic Agent",
		Description:  "Autonomous multi-step task execution",
		Capabilities: []string{"planning", "tool_use", "automation"},
	},
	ModelCustom: {
		Name:         "Crowe Logic Custom",
		Description:  "Customizable intelligence for specific business needs",
		Capabilities: []string{"custom_training", "domain_specific", "enterprise", "specialized"},
	},
}

// DescribeModel returns display metadata for a model id. Unknown ids get a
// generic description.
func DescribeModel(id string) ModelInfo {
	info, ok := modelInfo[id]
	if !ok {
		return ModelInfo{ID: id, Name: id, Description: "Crowe Logic Intelligence Model"}
	}
	info.ID = id
	info.Capabilities = append([]string(nil), info.Capabilities...)
	return info
}
