/*
 * @Description: 内容与线索相关的枚举常量
 * @Author: 安知鱼
 * @Date: 2025-08-30 10:12:40
 * @LastEditTime: 2025-09-02 18:44:09
 * @LastEditors: 安知鱼
 */
package constant

// 文章状态
const (
	PostStatusDraft     = "draft"
	PostStatusPublished = "published"
	PostStatusArchived  = "archived"
)

// 文章优先级
const (
	PostPriorityLow    = "low"
	PostPriorityMedium = "medium"
	PostPriorityHigh   = "high"
)

// 留言线索状态
const (
	ContactStatusPending    = "pending"
	ContactStatusInProgress = "in-progress"
	ContactStatusResolved   = "resolved"
	ContactStatusClosed     = "closed"
)

// 留言线索优先级
const (
	ContactPriorityLow    = "low"
	ContactPriorityMedium = "medium"
	ContactPriorityHigh   = "high"
	ContactPriorityUrgent = "urgent"
)

// 留言咨询类别，闭合枚举，与前端表单的下拉选项一一对应
const (
	ContactQuestionGeneral     = "General Inquiry"
	ContactQuestionProduct     = "Product Information"
	ContactQuestionTechSupport = "Technical Support"
	ContactQuestionPricing     = "Pricing"
	ContactQuestionCustom      = "Custom Solution"
	ContactQuestionPartnership = "Partnership"
	ContactQuestionOther       = "Other"
)

// ValidPostStatus 判断给定值是否为合法的文章状态。
func ValidPostStatus(s string) bool {
	switch s {
	case PostStatusDraft, PostStatusPublished, PostStatusArchived:
		return true
	}
	return false
}

// ValidContactStatus 判断给定值是否为合法的线索状态。
func ValidContactStatus(s string) bool {
	switch s {
	case ContactStatusPending, ContactStatusInProgress, ContactStatusResolved, ContactStatusClosed:
		return true
	}
	return false
}

// ValidContactQuestion 判断给定值是否为合法的咨询类别。
func ValidContactQuestion(s string) bool {
	switch s {
	case ContactQuestionGeneral, ContactQuestionProduct, ContactQuestionTechSupport,
		ContactQuestionPricing, ContactQuestionCustom, ContactQuestionPartnership, ContactQuestionOther:
		return true
	}
	return false
}
