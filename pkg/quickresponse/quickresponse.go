// Package quickresponse 提供客服快捷回复模板
// 纯静态数据，不落库、不做版本管理，仅供前端预填 sendReply 的内容
package quickresponse

// QuickResponse 快捷回复模板（标签 + 预设文案）
type QuickResponse struct {
	Label string `json:"label"`
	Text  string `json:"text"`
}

// List 返回所有快捷回复模板
// 返回副本，调用方修改不影响模板本身
func List() []QuickResponse {
	out := make([]QuickResponse, len(templates))
	copy(out, templates)
	return out
}

var templates = []QuickResponse{
	{Label: "Greeting", Text: "您好！感谢联系在线客服，有什么可以帮您？"},
	{Label: "Pricing", Text: "各商品的价格以详情页为准，如需帮您挑选符合预算的商品请告诉我。"},
	{Label: "Customization", Text: "是的，购买后您将获得完整源码，可以自由修改定制。"},
	{Label: "Delivery", Text: "购买成功后即可下载，下载链接同时会发送到您的邮箱，请注意查收。"},
	{Label: "Refund", Text: "购买后 7 天内如商品不符合预期可申请退款，请提供订单信息联系我们。"},
	{Label: "Tech Support", Text: "如遇技术问题，请尽量详细描述现象，附截图可以帮助我们更快定位。"},
	{Label: "Thanks", Text: "感谢您的支持！还有其他可以帮您的吗？"},
}
