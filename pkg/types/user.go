package types

// UserRef 是跨 hub 共享的不透明用户句柄，身份即其 CID
//
// 两个 UserRef 相等当且仅当其 CID 相等；HubURL、昵称等均不参与比较。
type UserRef struct {
	cid CID
}

// NewUserRef 从 CID 构造一个 UserRef
func NewUserRef(cid CID) UserRef {
	return UserRef{cid: cid}
}

// UserRefFromNick 从昵称与 hub URL 派生 UserRef（即 MakeCID 的包装）
func UserRefFromNick(nick, hubURL string) UserRef {
	return UserRef{cid: MakeCID(nick, hubURL)}
}

// CID 返回该用户的 CID
func (u UserRef) CID() CID {
	return u.cid
}

// IsZero 报告该 UserRef 是否未设置
func (u UserRef) IsZero() bool {
	return u.cid.IsZero()
}

// Equal 报告两个 UserRef 是否指向同一 CID
func (u UserRef) Equal(other UserRef) bool {
	return u.cid == other.cid
}

// String 返回底层 CID 的 base32 表示，便于日志与 map key 使用
func (u UserRef) String() string {
	return u.cid.String()
}

// HintedUser 是 (UserRef, HubURL) 对：一个用户句柄加上发现它的 hub
//
// 同一个 UserRef 可能在不同 hub 上出现多次；HubURL 只是“在哪里找到
// 这个用户”的提示，不参与相等性判断。
type HintedUser struct {
	User   UserRef
	HubURL string
}

// Equal 报告两个 HintedUser 是否引用同一个 UserRef（忽略 HubURL）
func (h HintedUser) Equal(other HintedUser) bool {
	return h.User.Equal(other.User)
}

// IsZero 报告该 HintedUser 是否未设置
func (h HintedUser) IsZero() bool {
	return h.User.IsZero()
}
