package framework

import "net"

// MaxDatagramSize UDP 数据报最大长度，接收缓冲区按此分配
const MaxDatagramSize = 65535

// Datagram 收到的一个数据报（框架内部流转）
type Datagram struct {
	Payload []byte   // 指向接收缓冲区，下一次接收前有效
	Source  net.Addr // 来源地址，仅用于诊断
}
