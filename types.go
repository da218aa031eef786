package main

import "time"

// DTOs mirrored from the backend. The portal never owns or mutates these
// server side; it only renders them and round-trips them on actions.

type accountInfo struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email,omitempty"`
	MemberURN string `json:"member_urn,omitempty"`
	Connected bool   `json:"connected"`
}

type organization struct {
	ID  string `json:"id"`
	URN string `json:"urn"`
}

type post struct {
	ID             string    `json:"id"`
	Commentary     string    `json:"commentary"`
	Hashtags       []string  `json:"hashtags,omitempty"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
	LinkedInPostID string    `json:"linkedin_post_id,omitempty"`
	Error          string    `json:"error,omitempty"`
	Target         string    `json:"target,omitempty"`
}

const (
	targetMember = "MEMBER"
	targetOrg    = "ORG"
)

type publishRequest struct {
	IDs        []string `json:"ids"`
	Target     string   `json:"target"`
	PublishNow bool     `json:"publish_now"`
	OrgID      string   `json:"org_id,omitempty"`
}

type publishOutcome struct {
	ID             string `json:"id"`
	Success        bool   `json:"success"`
	LinkedInPostID string `json:"linkedin_post_id,omitempty"`
	Error          string `json:"error,omitempty"`
}

type publishResponse struct {
	Successful int              `json:"successful"`
	Results    []publishOutcome `json:"results"`
}

type runBatchResponse struct {
	Started int    `json:"started"`
	BatchID string `json:"batch_id,omitempty"`
}

type agentSummary struct {
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	CustomPrompt bool   `json:"custom_prompt"`
}

type promptBundle struct {
	Agent                     string `json:"agent"`
	Description               string `json:"description,omitempty"`
	CustomPrompt              bool   `json:"custom_prompt"`
	SystemPrompt              string `json:"system_prompt"`
	UserPromptTemplate        string `json:"user_prompt_template"`
	DefaultSystemPrompt       string `json:"default_system_prompt"`
	DefaultUserPromptTemplate string `json:"default_user_prompt_template"`
}

type promptUpdate struct {
	SystemPrompt       string `json:"system_prompt"`
	UserPromptTemplate string `json:"user_prompt_template"`
}

type linkedInSettings struct {
	ClientID             string `json:"client_id"`
	ClientSecret         string `json:"client_secret,omitempty"`
	HasSecret            bool   `json:"has_secret,omitempty"`
	RedirectURI          string `json:"redirect_uri"`
	SuggestedRedirectURI string `json:"suggested_redirect_uri,omitempty"`
	RedirectURICorrect   *bool  `json:"redirect_uri_correct,omitempty"`
}

type brandSettings struct {
	Tone      int    `json:"tone"`
	Pithiness int    `json:"pithiness"`
	Jargon    int    `json:"jargon"`
	Notes     string `json:"notes,omitempty"`
}

type inspirationSource struct {
	Type    string `json:"type"`
	ID      string `json:"id"`
	Title   string `json:"title"`
	Preview string `json:"preview,omitempty"`
}

type buyerPersona struct {
	Title            string   `json:"title"`
	CompanySize      string   `json:"company_size,omitempty"`
	Sector           string   `json:"sector,omitempty"`
	Region           string   `json:"region,omitempty"`
	Goals            []string `json:"goals,omitempty"`
	RiskTolerance    string   `json:"risk_tolerance,omitempty"`
	DecisionCriteria []string `json:"decision_criteria,omitempty"`
	Personality      string   `json:"personality,omitempty"`
	ToneResonance    string   `json:"tone_resonance,omitempty"`
}

type generateRequest struct {
	Brand        brandSettings       `json:"brand"`
	Inspirations []inspirationSource `json:"inspirations"`
	Length       string              `json:"length"`
	StyleFlags   []string            `json:"style_flags,omitempty"`
	Persona      *buyerPersona       `json:"persona,omitempty"`
}

type generatedPost struct {
	Content          string             `json:"content"`
	Hashtags         []string           `json:"hashtags,omitempty"`
	ImageURL         string             `json:"image_url,omitempty"`
	ValidationScores map[string]float64 `json:"validation_scores,omitempty"`
}

type createPostRequest struct {
	Commentary string   `json:"commentary"`
	Hashtags   []string `json:"hashtags,omitempty"`
	ImageURL   string   `json:"image_url,omitempty"`
	Source     string   `json:"source,omitempty"`
}

type createPostResponse struct {
	ID string `json:"id"`
}

type costRecord struct {
	Timestamp    time.Time `json:"timestamp"`
	Agent        string    `json:"agent"`
	Model        string    `json:"model,omitempty"`
	InputTokens  int       `json:"input_tokens"`
	OutputTokens int       `json:"output_tokens"`
	TotalTokens  int       `json:"total_tokens"`
	CostUSD      float64   `json:"cost_usd"`
}

type costSummary struct {
	TotalCalls  int     `json:"total_calls"`
	TotalTokens int     `json:"total_tokens"`
	TotalUSD    float64 `json:"total_usd"`
	Currency    string  `json:"currency,omitempty"`
}
