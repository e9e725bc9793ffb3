/*
 * @Description: 业务邮件发送服务
 * @Author: 安知鱼
 * @Date: 2025-07-03 10:50:19
 * @LastEditTime: 2025-09-19 15:33:46
 * @LastEditors: 安知鱼
 */
package utility

import (
	"context"
	"crypto/tls"
	"fmt"
	"html/template"
	"log"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/anzhiyu-c/anheyu-cms/pkg/config"
	"github.com/anzhiyu-c/anheyu-cms/pkg/domain/model"
)

// EmailService 定义了发送业务邮件的接口
type EmailService interface {
	// SendContactNotification 发送新留言通知邮件给站长
	SendContactNotification(ctx context.Context, contact *model.Contact) error
	SendTestEmail(ctx context.Context, toEmail string) error
}

type emailService struct {
	cfg *config.Config
}

// NewEmailService 是 emailService 的构造函数
func NewEmailService(cfg *config.Config) EmailService {
	return &emailService{cfg: cfg}
}

// SendContactNotification 发送新留言通知邮件给站长。
// 未配置通知邮箱或 SMTP 信息时静默跳过，不算失败。
func (s *emailService) SendContactNotification(ctx context.Context, contact *model.Contact) error {
	if contact == nil {
		return fmt.Errorf("无法发送留言通知邮件：contact 为 nil")
	}

	notifyTo := strings.TrimSpace(s.cfg.GetString(config.KeyContactNotifyTo))
	if notifyTo == "" {
		log.Printf("[DEBUG] 留言通知邮箱未配置（Mail.ContactNotifyTo 为空），跳过发送")
		return nil
	}

	subject := fmt.Sprintf("收到来自「%s」的新留言：%s", contact.Name, contact.ProductQuestion)
	body := fmt.Sprintf(`<p>你好！网站刚刚收到一条新留言：</p>
	<ul>
		<li>姓名：%s</li>
		<li>邮箱：%s</li>
		<li>咨询类别：%s</li>
	</ul>
	<blockquote>%s</blockquote>
	<p>请尽快登录管理后台处理。</p>`,
		template.HTMLEscapeString(contact.Name),
		template.HTMLEscapeString(contact.Email),
		template.HTMLEscapeString(contact.ProductQuestion),
		template.HTMLEscapeString(contact.Message))

	return s.send(notifyTo, subject, body)
}

// SendTestEmail 负责发送一封测试邮件，用于校验 SMTP 配置
func (s *emailService) SendTestEmail(ctx context.Context, toEmail string) error {
	subject := "这是一封来自「安和内容系统」的测试邮件"
	body := `<p>你好！</p>
	<p>如果您收到了这封邮件，那么证明您的邮件服务配置正确。</p>`
	return s.send(toEmail, subject, body)
}

func (s *emailService) send(to, subject, body string) error {
	host := s.cfg.GetString(config.KeySMTPHost)
	portStr := s.cfg.GetString(config.KeySMTPPort)
	username := s.cfg.GetString(config.KeySMTPUser)
	password := s.cfg.GetString(config.KeySMTPPassword)
	senderEmail := s.cfg.GetString(config.KeySMTPFrom)

	if host == "" || senderEmail == "" {
		log.Printf("[DEBUG] SMTP 未配置（Mail.Host 或 Mail.From 为空），跳过发送")
		return nil
	}

	port, err := strconv.Atoi(portStr)
	if err != nil {
		msg := fmt.Sprintf("SMTP端口配置无效 '%s'", portStr)
		log.Printf("错误: %s: %v", msg, err)
		return fmt.Errorf("%s: %w", msg, err)
	}

	headers := make(map[string]string)
	headers["From"] = senderEmail
	headers["To"] = to
	headers["Subject"] = subject
	headers["Content-Type"] = "text/html; charset=UTF-8"

	var messageBuilder strings.Builder
	for k, v := range headers {
		messageBuilder.WriteString(fmt.Sprintf("%s: %s\r\n", k, v))
	}
	messageBuilder.WriteString("\r\n")
	messageBuilder.WriteString(body)
	message := []byte(messageBuilder.String())

	var auth smtp.Auth
	if username != "" {
		auth = smtp.PlainAuth("", username, password, host)
	}
	addr := net.JoinHostPort(host, portStr)

	// 465 端口走隐式 SSL，其余端口走 STARTTLS
	if port == 465 {
		if err := sendMailSSL(addr, auth, senderEmail, []string{to}, message); err != nil {
			log.Printf("错误: [SSL] 发送邮件到 %s 失败: %v", to, err)
			return err
		}
		return nil
	}

	conn, err := net.DialTimeout("tcp", addr, 15*time.Second)
	if err != nil {
		log.Printf("错误: [STARTTLS] Dialing failed: %v", err)
		return err
	}

	c, err := smtp.NewClient(conn, host)
	if err != nil {
		conn.Close()
		log.Printf("错误: [STARTTLS] 创建SMTP客户端失败: %v", err)
		return err
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok {
		tlsConfig := &tls.Config{
			ServerName:         host,
			InsecureSkipVerify: true,
		}
		if err = c.StartTLS(tlsConfig); err != nil {
			log.Printf("错误: [STARTTLS] c.StartTLS failed: %v", err)
			return err
		}
	}

	if auth != nil {
		if err = c.Auth(auth); err != nil {
			log.Printf("错误: [STARTTLS] c.Auth failed: %v", err)
			return err
		}
	}

	if err = c.Mail(senderEmail); err != nil {
		return err
	}
	if err = c.Rcpt(to); err != nil {
		return err
	}

	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err = w.Write(message); err != nil {
		return err
	}
	if err = w.Close(); err != nil {
		return err
	}
	return c.Quit()
}

func sendMailSSL(addr string, auth smtp.Auth, from string, to []string, message []byte) error {
	host, port, _ := net.SplitHostPort(addr)
	tlsConfig := &tls.Config{
		InsecureSkipVerify: true,
		ServerName:         host,
		MinVersion:         tls.VersionTLS12, // 最低支持TLS 1.2
	}

	dialer := &net.Dialer{
		Timeout: 15 * time.Second,
	}

	log.Printf("[邮件发送] 尝试通过SSL连接到 %s:%s", host, port)
	conn, err := tls.DialWithDialer(dialer, "tcp", addr, tlsConfig)
	if err != nil {
		return fmt.Errorf("TLS拨号失败 (请检查端口是否正确，SSL通常使用465端口): %w", err)
	}
	defer conn.Close()
	client, err := smtp.NewClient(conn, host)
	if err != nil {
		return fmt.Errorf("创建SMTP客户端失败: %w", err)
	}
	defer client.Close()
	if auth != nil {
		if err = client.Auth(auth); err != nil {
			return fmt.Errorf("SMTP认证失败: %w", err)
		}
	}
	if err = client.Mail(from); err != nil {
		return fmt.Errorf("设置发件人失败: %w", err)
	}
	for _, recipient := range to {
		if err = client.Rcpt(recipient); err != nil {
			return fmt.Errorf("设置收件人 %s 失败: %w", recipient, err)
		}
	}
	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("获取数据写入器失败: %w", err)
	}
	if _, err = w.Write(message); err != nil {
		return fmt.Errorf("写入邮件内容失败: %w", err)
	}
	if err = w.Close(); err != nil {
		return fmt.Errorf("关闭写入器失败: %w", err)
	}
	if err := client.Quit(); err != nil {
		log.Printf("警告: SMTP client.Quit() 执行失败: %v。这通常不影响邮件发送。", err)
	}
	return nil
}
