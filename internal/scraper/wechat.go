package scraper

import (
	"context"
	"fmt"
	"regexp"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"

	"github.com/icpulse/icnews/internal/logger"
	"github.com/icpulse/icnews/internal/model"
	"github.com/icpulse/icnews/internal/textutil"
)

const memberPageURL = "https://iccircle.com/member"

// WeChatScraper collects public-account profiles from the community
// member directory. When the page structure yields nothing, a curated
// list of well-known accounts is used instead.
type WeChatScraper struct {
	client  *resty.Client
	pageURL string
}

// NewWeChatScraper builds a scraper against the community member page.
func NewWeChatScraper(client *resty.Client) *WeChatScraper {
	return &WeChatScraper{client: client, pageURL: memberPageURL}
}

var memberCardSelectors = []string{
	".member-card, .member-item, .user-card, .profile-card",
	`div[class*="member"], div[class*="user"], div[class*="profile"]`,
}

var nameSelectors = []string{
	".name", ".title", ".username", ".account-name",
	"h3", "h4", ".member-name", ".profile-name",
}

var descSelectors = []string{
	".description", ".bio", ".intro", ".summary",
	".member-desc", ".profile-desc", "p",
}

var wechatIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`微信[：:]?\s*([a-zA-Z0-9_-]+)`),
	regexp.MustCompile(`WeChat[：:]?\s*([a-zA-Z0-9_-]+)`),
	regexp.MustCompile(`公众号[：:]?\s*(\S+)`),
	regexp.MustCompile(`ID[：:]?\s*([a-zA-Z0-9_-]+)`),
}

// Fetch scrapes member cards from the directory page. Card parse
// failures skip that card only. A page that yields no accounts at all
// falls back to the curated list.
func (s *WeChatScraper) Fetch(ctx context.Context) ([]model.WeChatAccount, error) {
	doc, err := fetchDocument(ctx, s.client, s.pageURL)
	if err != nil {
		logger.Warn("member page unreachable, using curated account list", "error", err)
		return curatedAccounts(), nil
	}

	var cards *goquery.Selection
	for _, sel := range memberCardSelectors {
		cards = doc.Find(sel)
		if cards.Length() > 0 {
			break
		}
	}
	logger.Info("member cards found", "count", cards.Length())

	var accounts []model.WeChatAccount
	cards.Each(func(_ int, card *goquery.Selection) {
		if acc, ok := extractAccount(card); ok {
			accounts = append(accounts, acc)
		}
	})

	if len(accounts) == 0 {
		logger.Info("no accounts parsed from member page, using curated list")
		return curatedAccounts(), nil
	}
	return accounts, nil
}

// extractAccount pulls a profile out of one member card. An account
// needs a name plus at least a description or a recognizable id.
func extractAccount(card *goquery.Selection) (model.WeChatAccount, bool) {
	var name string
	for _, sel := range nameSelectors {
		if name = textutil.CleanText(card.Find(sel).First().Text()); name != "" {
			break
		}
	}

	var description string
	for _, sel := range descSelectors {
		if description = textutil.CleanText(card.Find(sel).First().Text()); description != "" {
			break
		}
	}

	var wechatID string
	text := card.Text()
	for _, re := range wechatIDPatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			wechatID = m[1]
			break
		}
	}

	if name == "" || (description == "" && wechatID == "") {
		return model.WeChatAccount{}, false
	}

	if wechatID == "" {
		wechatID = name
	}
	if description == "" {
		description = fmt.Sprintf("IC技术圈成员 - %s", name)
	}

	return model.WeChatAccount{
		Name:               name,
		WeChatID:           wechatID,
		Description:        description,
		Positioning:        "IC技术专业公众号",
		TargetAudience:     "IC技术从业者",
		OperatorBackground: "IC技术圈成员",
		Tags:               []string{"IC技术圈", "IC技术", "半导体"},
		IsVerified:         true,
		IsActive:           true,
	}, true
}

// curatedAccounts is the fallback list of established community
// accounts used when the member page yields nothing.
func curatedAccounts() []model.WeChatAccount {
	known := []struct {
		name, id, desc, positioning string
	}{
		{"芯片验证日记", "ICVerification", "IC验证技术分享，验证方法学和经验总结", "IC验证技术专家"},
		{"小蔡读书", "xiaocaidushu", "IC技术读书分享，芯片设计学习心得", "IC技术学习分享"},
		{"处芯积律", "chuxinjilv", "IC处理器设计技术分享", "处理器设计专家"},
		{"IC Verification Club", "ICVerificationClub", "IC验证技术交流社区", "IC验证技术社区"},
		{"ExASIC", "ExASIC", "ASIC设计技术分享", "ASIC设计专家"},
		{"钟林谈芯", "zhonglintan", "芯片设计技术深度分析", "芯片设计技术专家"},
		{"软硬件融合", "ruanyingjianyuhe", "软硬件协同设计技术", "软硬件协同设计"},
		{"白话IC", "baihuaIC", "IC技术科普和深度解析", "IC技术科普专家"},
		{"FPGA技术联盟", "FPGATechAlliance", "FPGA设计技术分享", "FPGA技术专家"},
		{"IC设计与验证", "ICDesignVerify", "IC设计与验证技术交流", "IC设计验证专家"},
		{"数字IC设计", "DigitalICDesign", "数字IC设计技术分享", "数字IC设计专家"},
		{"EDA技术分享", "EDATechShare", "EDA工具和技术分享", "EDA技术专家"},
		{"芯片设计工程师", "ChipDesignEng", "芯片设计工程师技术交流", "芯片设计工程师"},
		{"IC人才网", "ICTalent", "IC行业人才招聘和职业发展", "IC人才服务"},
		{"芯片大师", "ChipMaster", "芯片技术深度解析和行业洞察", "芯片技术专家"},
	}

	accounts := make([]model.WeChatAccount, 0, len(known))
	for _, k := range known {
		accounts = append(accounts, model.WeChatAccount{
			Name:               k.name,
			WeChatID:           k.id,
			Description:        k.desc,
			Positioning:        k.positioning,
			TargetAudience:     "IC技术从业者",
			OperatorBackground: "IC技术圈成员",
			Tags:               []string{"IC技术圈", "IC技术", "半导体"},
			IsVerified:         true,
			IsActive:           true,
		})
	}
	return accounts
}
